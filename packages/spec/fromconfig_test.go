package spec

import (
	"bytes"
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("REQRES_KEY", "reqres-free-v1")

	cfg := config.DefaultConfig()
	cfg.Specs = map[string]config.SpecConfig{
		"reqres": {
			BaseURI:     "https://reqres.in",
			BasePath:    "/api",
			ContentType: "json",
			Headers:     map[string]string{"x-api-key": "${REQRES_KEY}"},
		},
		"reqres-v2": {
			Extends:  "reqres",
			BasePath: "/api/v2",
			Headers:  map[string]string{"Accept": "application/json"},
		},
	}
	cfg.ResponseSpecs = map[string]config.ResponseSpecConfig{
		"ok": {Status: 200, ContentType: "json"},
	}

	reg, err := FromConfig(cfg)
	require.NoError(t, err)

	base, ok := reg.Request("reqres")
	require.True(t, ok)
	assert.Equal(t, "https://reqres.in", base.BaseURI())
	assert.Equal(t, http.ContentTypeJSON, base.ContentType())
	assert.Equal(t, "reqres-free-v1", base.Headers()["X-Api-Key"])

	child, ok := reg.Request("reqres-v2")
	require.True(t, ok)
	assert.Equal(t, "https://reqres.in", child.BaseURI())
	assert.Equal(t, "/api/v2", child.BasePath())
	assert.Equal(t, http.ContentTypeJSON, child.ContentType())
	assert.Equal(t, map[string]string{"X-Api-Key": "reqres-free-v1", "Accept": "application/json"}, child.Headers())

	ok200, ok := reg.Response("ok")
	require.True(t, ok)
	assert.Equal(t, 200, *ok200.StatusCode)
	assert.Equal(t, http.ContentTypeJSON, ok200.ContentType)
}

func TestFromConfig_LoggingFilters(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	cfg := &config.Config{Specs: map[string]config.SpecConfig{
		"local": {BaseURI: server.URL, Log: []string{"request", "response", "curl"}},
	}}
	reg, err := FromConfig(cfg, WithLogger(logger))
	require.NoError(t, err)

	s, _ := reg.Request("local")
	require.Len(t, s.Filters(), 2)

	_, err = http.NewClient().Get(context.Background(), s, "/health")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"sending request"`)
	assert.Contains(t, buf.String(), `"message":"received response"`)
	assert.Contains(t, buf.String(), "curl -X GET")
}

func TestFromConfig_ExtraFiltersAppliedOnce(t *testing.T) {
	f := http.FilterFuncs{}
	cfg := &config.Config{Specs: map[string]config.SpecConfig{
		"a": {BaseURI: "http://a"},
		"b": {Extends: "a"},
	}}

	reg, err := FromConfig(cfg, WithFilters(f))
	require.NoError(t, err)

	b, _ := reg.Request("b")
	assert.Len(t, b.Filters(), 1)
}

func TestFromConfig_Errors(t *testing.T) {
	_, err := FromConfig(&config.Config{Specs: map[string]config.SpecConfig{
		"a": {Log: []string{"everything"}},
	}})
	assert.ErrorContains(t, err, `unknown log option "everything"`)

	_, err = FromConfig(&config.Config{Specs: map[string]config.SpecConfig{
		"a": {Extends: "b"},
		"b": {Extends: "a"},
	}})
	assert.ErrorContains(t, err, "cycle")

	reg, err := FromConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, reg.Names())
}
