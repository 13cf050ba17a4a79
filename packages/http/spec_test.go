package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedFilter struct {
	FilterFuncs
	name string
}

func TestNewRequestSpec_CopiesInput(t *testing.T) {
	headers := map[string]string{"Accept": "application/json"}
	spec := NewRequestSpec(SpecOptions{BaseURI: " https://reqres.in ", Headers: headers})

	headers["Accept"] = "text/plain"
	assert.Equal(t, "application/json", spec.Headers()["Accept"])
	assert.Equal(t, "https://reqres.in", spec.BaseURI())

	spec.Headers()["Accept"] = "changed"
	assert.Equal(t, "application/json", spec.Headers()["Accept"])
}

func TestMerge_OverrideWins(t *testing.T) {
	base := NewRequestSpec(SpecOptions{
		BaseURI:     "https://reqres.in",
		BasePath:    "/api",
		ContentType: ContentTypeJSON,
		Headers:     map[string]string{"Accept": "application/json", "X-Env": "base"},
	})

	merged := Merge(base, SpecOptions{
		BasePath: "/v2",
		Headers:  map[string]string{"X-Env": "override"},
	})

	assert.Equal(t, "https://reqres.in", merged.BaseURI())
	assert.Equal(t, "/v2", merged.BasePath())
	assert.Equal(t, ContentTypeJSON, merged.ContentType())
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Env": "override"}, merged.Headers())

	assert.Equal(t, "/api", base.BasePath(), "base must be untouched")
	assert.Equal(t, "base", base.Headers()["X-Env"])
}

func TestMerge_OverrideWinsAcrossCase(t *testing.T) {
	base := NewRequestSpec(SpecOptions{Headers: map[string]string{"Accept": "application/xml"}})

	merged := Merge(base, SpecOptions{Headers: map[string]string{"accept": "text/plain"}})

	assert.Equal(t, map[string]string{"Accept": "text/plain"}, merged.Headers())
	assert.Equal(t, map[string]string{"Accept": "application/xml"}, base.Headers())
}

func TestNewRequestSpec_CanonicalHeaderNames(t *testing.T) {
	spec := NewRequestSpec(SpecOptions{Headers: map[string]string{"x-api-key": "k", "content-TYPE": "text/plain"}})

	assert.Equal(t, map[string]string{"X-Api-Key": "k", "Content-Type": "text/plain"}, spec.Headers())
}

func TestMerge_FiltersAppendInOrder(t *testing.T) {
	a := namedFilter{name: "a"}
	b := namedFilter{name: "b"}
	c := namedFilter{name: "c"}

	base := NewRequestSpec(SpecOptions{Filters: []Filter{a}})
	merged := base.With(SpecOptions{Filters: []Filter{b, c}})

	require.Len(t, merged.Filters(), 3)
	assert.Equal(t, "a", merged.Filters()[0].(namedFilter).name)
	assert.Equal(t, "b", merged.Filters()[1].(namedFilter).name)
	assert.Equal(t, "c", merged.Filters()[2].(namedFilter).name)
	assert.Len(t, base.Filters(), 1)
}

func TestMerge_Associative(t *testing.T) {
	a := NewRequestSpec(SpecOptions{
		BaseURI: "https://a.example",
		Headers: map[string]string{"X-A": "a", "X-Shared": "a"},
		Filters: []Filter{namedFilter{name: "a"}},
	})
	b := SpecOptions{
		BasePath: "/b",
		Headers:  map[string]string{"X-Shared": "b"},
		Filters:  []Filter{namedFilter{name: "b"}},
	}
	c := SpecOptions{
		ContentType: ContentTypeXML,
		Headers:     map[string]string{"X-C": "c"},
		Filters:     []Filter{namedFilter{name: "c"}},
	}

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(NewRequestSpec(b), c).Options())

	assert.Equal(t, left.BaseURI(), right.BaseURI())
	assert.Equal(t, left.BasePath(), right.BasePath())
	assert.Equal(t, left.ContentType(), right.ContentType())
	assert.Equal(t, left.Headers(), right.Headers())
	require.Len(t, right.Filters(), 3)
	for i := range left.Filters() {
		assert.Equal(t, left.Filters()[i].(namedFilter).name, right.Filters()[i].(namedFilter).name)
	}
}

func TestRequestSpec_ResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURI  string
		basePath string
		path     string
		query    map[string]string
		want     string
		wantErr  error
	}{
		{
			name:    "base and path",
			baseURI: "https://reqres.in",
			path:    "/api/users/2",
			want:    "https://reqres.in/api/users/2",
		},
		{
			name:     "base path joined",
			baseURI:  "https://reqres.in/",
			basePath: "/api/",
			path:     "users",
			want:     "https://reqres.in/api/users",
		},
		{
			name:    "query in path and map",
			baseURI: "https://reqres.in",
			path:    "/api/users?page=2",
			query:   map[string]string{"delay": "1"},
			want:    "https://reqres.in/api/users?delay=1&page=2",
		},
		{
			name:    "absolute path bypasses base",
			baseURI: "https://reqres.in",
			path:    "http://localhost:8080/health",
			want:    "http://localhost:8080/health",
		},
		{
			name:    "empty path",
			baseURI: "https://reqres.in",
			path:    "",
			want:    "https://reqres.in/",
		},
		{
			name:    "missing base",
			path:    "/users",
			wantErr: ErrMissingBaseURI,
		},
		{
			name:    "bad scheme",
			baseURI: "ftp://reqres.in",
			path:    "/users",
			wantErr: ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := NewRequestSpec(SpecOptions{BaseURI: tt.baseURI, BasePath: tt.basePath})
			got, err := spec.ResolveURL(tt.path, tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
