package mock

import (
	"os"
	"testing"

	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestCreatePathRegex(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		params  map[string]string
	}{
		{"/users", "/users", map[string]string{}},
		{"/users/{id}", "/users/42", map[string]string{"id": "42"}},
		{"/users/{id}/posts/{postId}", "/users/1/posts/9", map[string]string{"id": "1", "postId": "9"}},
		{"/users/{id}", "/users", nil},
		{"/users/{id}", "/users/1/posts", nil},
		{"/a.b", "/aXb", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			route := &Route{Path: tt.pattern, pathRegex: createPathRegex(tt.pattern)}
			assert.Equal(t, tt.params, matchPath(route, tt.path))
		})
	}
}

func TestRouter_FirstMatchWins(t *testing.T) {
	r := NewRouter()
	r.AddRoute(&Route{Name: "specific", Method: "GET", Path: "/users/2"})
	r.AddRoute(&Route{Name: "generic", Method: "GET", Path: "/users/{id}/"})

	route, params := r.Match(&incoming{method: "GET", path: "/users/2", body: jsonpath.From(nil)})
	require.NotNil(t, route)
	assert.Equal(t, "specific", route.Name)
	assert.Empty(t, params)

	route, params = r.Match(&incoming{method: "GET", path: "/users/3", body: jsonpath.From(nil)})
	require.NotNil(t, route)
	assert.Equal(t, "generic", route.Name)
	assert.Equal(t, "3", params["id"])

	route, _ = r.Match(&incoming{method: "POST", path: "/users/3", body: jsonpath.From(nil)})
	assert.Nil(t, route)
	assert.True(t, r.PathAllowed("/users/3"))
	assert.False(t, r.PathAllowed("/orders"))
}

func TestRouter_WildcardMethod(t *testing.T) {
	r := NewRouter()
	r.AddRoute(&Route{Method: "*", Path: "/any"})

	for _, m := range []string{"GET", "POST", "DELETE"} {
		route, _ := r.Match(&incoming{method: m, path: "/any", body: jsonpath.From(nil)})
		assert.NotNil(t, route, m)
	}
}

func TestCondition_Accepts(t *testing.T) {
	req := &incoming{
		query:   map[string][]string{"page": {"2"}},
		headers: map[string][]string{"X-Tenant": {"acme"}},
		body:    jsonpath.FromString(`{"user":{"name":"neo","age":30},"tags":["a"]}`),
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"empty", Condition{}, true},
		{"query", Condition{Query: map[string]string{"page": "2"}}, true},
		{"query mismatch", Condition{Query: map[string]string{"page": "3"}}, false},
		{"header case insensitive", Condition{Headers: map[string]string{"x-tenant": "acme"}}, true},
		{"header missing", Condition{Headers: map[string]string{"X-Other": "1"}}, false},
		{"body string", Condition{Body: map[string]any{"user.name": "neo"}}, true},
		{"body number", Condition{Body: map[string]any{"user.age": 30}}, true},
		{"body list", Condition{Body: map[string]any{"tags": []any{"a"}}}, true},
		{"body mismatch", Condition{Body: map[string]any{"user.name": "trinity"}}, false},
		{"body missing path", Condition{Body: map[string]any{"user.email": "x"}}, false},
		{"missing satisfied", Condition{Missing: []string{"password"}}, true},
		{"missing violated", Condition{Missing: []string{"user.name"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.accepts(req))
		})
	}
}
