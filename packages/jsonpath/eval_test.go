package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersPage = `{
  "page": 2,
  "per_page": 6,
  "total": 12,
  "total_pages": 2,
  "data": [
    {"id": 7, "email": "michael.lawson@reqres.in", "first_name": "Michael", "last_name": "Lawson"},
    {"id": 8, "email": "lindsay.ferguson@reqres.in", "first_name": "Lindsay", "last_name": "Ferguson"},
    {"id": 11, "email": "george.edwards@reqres.in", "first_name": "George", "last_name": "Edwards"},
    {"id": 12, "email": "rachel.howell@reqres.in", "first_name": "Rachel", "last_name": "Howell"}
  ],
  "support": {"url": "https://reqres.in/#support-heading", "text": "Thanks"}
}`

func TestGet_Token(t *testing.T) {
	v, err := GetString(`{"token":"QpwL5tke4Pnpja7X4"}`, "token")
	require.NoError(t, err)
	assert.Equal(t, "QpwL5tke4Pnpja7X4", v)
}

func TestGet_NestedInteger(t *testing.T) {
	v, err := GetString(`{"data":{"id":2}}`, "data.id")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestGet_PredicateConjunction(t *testing.T) {
	body := `{"data":[{"id":5,"last_name":"Howell"},{"id":12,"last_name":"Howell"},{"id":1,"last_name":"Wong"}]}`

	v, err := GetString(body, "data.findAll{user -> user.id > 10 && user.last_name == 'Howell'}")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"id": int64(12), "last_name": "Howell"}}, v)
}

func TestGet_EmptyBody(t *testing.T) {
	for _, body := range []string{"", "   \n"} {
		for _, expr := range []string{"", "id", "data[0].id"} {
			_, err := GetString(body, expr)
			assert.ErrorIs(t, err, ErrFieldNotFound, "body %q expr %q", body, expr)
		}
	}
}

func TestGet_MalformedJSON(t *testing.T) {
	_, err := GetString(`{"token": `, "token")
	assert.ErrorIs(t, err, ErrMalformedJSON)
}

func TestGet_Paths(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected any
	}{
		{"top level int", "page", int64(2)},
		{"index into list", "data[0].id", int64(7)},
		{"string field", "data[3].last_name", "Howell"},
		{"nested object", "support.text", "Thanks"},
		{"wildcard collect", "data.*.id", []any{int64(7), int64(8), int64(11), int64(12)}},
		{"bracket wildcard", "data[*].first_name", []any{"Michael", "Lindsay", "George", "Rachel"}},
		{"find first", "data.find{u -> u.id > 10}.email", "george.edwards@reqres.in"},
		{"findAll then index", "data.findAll{user -> user.id > 10}[0].email", "george.edwards@reqres.in"},
		{"root object keys", "support", map[string]any{"url": "https://reqres.in/#support-heading", "text": "Thanks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := GetString(usersPage, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestGet_PredicatePreservesOrder(t *testing.T) {
	v, err := GetString(usersPage, "data.findAll{u -> u.id != 8}.*.id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7), int64(11), int64(12)}, v)
}

func TestGet_PredicateNoMatch(t *testing.T) {
	v, err := GetString(usersPage, "data.findAll{u -> u.id > 100}")
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestGet_FindNoMatch(t *testing.T) {
	_, err := GetString(usersPage, "data.find{u -> u.id > 100}")
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestGet_MixedTypeConjuncts(t *testing.T) {
	body := `{"items":[{"v":"10"},{"v":10},{"v":true},{"v":null},{}]}`

	tests := []struct {
		expr string
		want int
	}{
		{"items.findAll{i -> i.v == 10}", 1},
		{"items.findAll{i -> i.v == '10'}", 1},
		{"items.findAll{i -> i.v > 5}", 1},
		{"items.findAll{i -> i.v > '5'}", 0},
		{"items.findAll{i -> i.v == true}", 1},
		{"items.findAll{i -> i.v == null}", 1},
		{"items.findAll{i -> i.v != 10}", 3},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, err := GetString(body, tt.expr)
			require.NoError(t, err)
			assert.Len(t, v, tt.want)
		})
	}
}

func TestGet_ScalarElements(t *testing.T) {
	v, err := GetString(`{"numbers":[1,5,2,8,3]}`, "numbers.findAll{n -> n >= 3}")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(5), int64(8), int64(3)}, v)
}

func TestGet_Numbers(t *testing.T) {
	v, err := GetString(`{"a":1.5,"b":1e3,"c":-4}`, "a")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	v, err = GetString(`{"a":1.5,"b":1e3,"c":-4}`, "b")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, v)

	v, err = GetString(`{"a":1.5,"b":1e3,"c":-4}`, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(-4), v)
}

func TestGet_Null(t *testing.T) {
	v, err := GetString(`{"value":null}`, "value")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestGet_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		kind error
	}{
		{"terminal field missing", "missing", ErrFieldNotFound},
		{"intermediate field missing", "missing.deeper", ErrFieldNotFound},
		{"missing inside object", "support.missing", ErrFieldNotFound},
		{"field on array", "data.id", ErrTypeMismatch},
		{"field on scalar", "page.value", ErrTypeMismatch},
		{"index on object", "support[0]", ErrTypeMismatch},
		{"index out of range", "data[4]", ErrIndexOutOfRange},
		{"predicate on object", "support.findAll{s -> s.text == 'x'}", ErrTypeMismatch},
		{"predicate on scalar", "page.findAll{p -> p > 1}", ErrTypeMismatch},
		{"wildcard on scalar", "page.*", ErrTypeMismatch},
		{"syntax", "data[-1]", ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetString(usersPage, tt.expr)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var pe *PathError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.expr, pe.Expr)
		})
	}
}

func TestGet_WildcardSkipsMissing(t *testing.T) {
	v, err := GetString(`{"rows":[{"id":1},{"name":"x"},{"id":3}]}`, "rows.*.id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(3)}, v)
}

func TestGet_ExactKeyMatch(t *testing.T) {
	body := `{"a.b": 1, "Name": "upper", "name": "lower"}`

	v, err := GetString(body, "['a.b']")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = GetString(body, "name")
	require.NoError(t, err)
	assert.Equal(t, "lower", v)
}
