package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createdUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Job       string `json:"job"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type registration struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
}

type profile struct {
	ID      int      `json:"id"`
	Email   string   `json:"email"`
	Avatar  *string  `json:"avatar"`
	Tags    []string `json:"tags"`
	Address address  `json:"address"`
}

type address struct {
	City string `json:"city"`
}

func TestGetObject_WholeDocument(t *testing.T) {
	body := []byte(`{"name":"morpheus","job":"leader","id":"101","createdAt":"2024-01-01T00:00:00.000Z","extra":true}`)

	var u createdUser
	require.NoError(t, GetObject(body, "", &u))
	assert.Equal(t, createdUser{ID: "101", Name: "morpheus", Job: "leader", CreatedAt: "2024-01-01T00:00:00.000Z"}, u)
}

func TestGetObject_Prefix(t *testing.T) {
	body := []byte(`{"data":{"id":2,"email":"janet.weaver@reqres.in","address":{"city":"Gotham"}}}`)

	var p profile
	require.NoError(t, GetObject(body, "data", &p))
	assert.Equal(t, 2, p.ID)
	assert.Equal(t, "Gotham", p.Address.City)
	assert.Nil(t, p.Avatar)
	assert.Nil(t, p.Tags)
}

func TestGetObject_Registration(t *testing.T) {
	var r registration
	require.NoError(t, GetObject([]byte(`{"id":4,"token":"QpwL5tke4Pnpja7X4"}`), "", &r))
	assert.Equal(t, registration{ID: 4, Token: "QpwL5tke4Pnpja7X4"}, r)
}

func TestGetObject_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing required field", `{"id":4}`},
		{"null required field", `{"id":4,"token":null}`},
		{"string where int expected", `{"id":"four","token":"abc"}`},
		{"fraction where int expected", `{"id":4.5,"token":"abc"}`},
		{"array instead of object", `[{"id":4,"token":"abc"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := registration{ID: 99, Token: "untouched"}
			err := GetObject([]byte(tt.body), "", &r)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrShapeMismatch)
			assert.Equal(t, registration{ID: 99, Token: "untouched"}, r, "target must not be partially populated")
		})
	}
}

func TestGetObject_NestedRequired(t *testing.T) {
	body := []byte(`{"id":1,"email":"a@b.c","address":{}}`)

	var p profile
	err := GetObject(body, "", &p)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "address.city")
}

func TestGetObject_SliceOfStructs(t *testing.T) {
	body := []byte(`{"data":[{"id":1,"token":"a"},{"id":2}]}`)

	var rs []registration
	err := GetObject(body, "data", &rs)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "[1].token")

	require.NoError(t, GetObject([]byte(`{"data":[{"id":1,"token":"a"}]}`), "data", &rs))
	assert.Equal(t, []registration{{ID: 1, Token: "a"}}, rs)
}

func TestGetObject_InvalidTarget(t *testing.T) {
	var r registration
	assert.ErrorIs(t, GetObject([]byte(`{}`), "", r), ErrShapeMismatch)
	assert.ErrorIs(t, GetObject([]byte(`{}`), "", nil), ErrShapeMismatch)
}

func TestGetObject_PathErrorsPropagate(t *testing.T) {
	var r registration
	assert.ErrorIs(t, GetObject([]byte(`{"a":1}`), "missing", &r), ErrFieldNotFound)
	assert.ErrorIs(t, GetObject(nil, "", &r), ErrFieldNotFound)
}
