package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.True(t, cfg.GetFollowRedirects())
	assert.Equal(t, 10, cfg.MaxRedirects)
	assert.True(t, cfg.GetValidateSSL())
	assert.Equal(t, 5, cfg.Concurrency)
	assert.False(t, cfg.GetParallel())
	assert.True(t, cfg.IsDefault())
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	content := `
timeout: 5000
rateLimit: 2.5
headers:
  Accept: application/json
specs:
  reqres:
    baseUri: https://reqres.in
    basePath: /api
    contentType: json
    headers:
      x-api-key: reqres-free-v1
    log: [request, response]
  reqres-v2:
    extends: reqres
    basePath: /api/v2
responseSpecs:
  ok-json:
    status: 200
    contentType: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".reqspec.yaml"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 10, cfg.MaxRedirects, "defaults survive")
	assert.Equal(t, "application/json", cfg.Headers["Accept"])

	require.Contains(t, cfg.Specs, "reqres")
	assert.Equal(t, "https://reqres.in", cfg.Specs["reqres"].BaseURI)
	assert.Equal(t, []string{"request", "response"}, cfg.Specs["reqres"].Log)
	assert.Equal(t, "reqres", cfg.Specs["reqres-v2"].Extends)
	assert.Equal(t, 200, cfg.ResponseSpecs["ok-json"].Status)

	order, err := cfg.SpecOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"reqres", "reqres-v2"}, order)
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reqspec.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout": 1000, "validateSSL": false, "specs": {"local": {"baseUri": "http://localhost:8080"}}}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.TimeoutDuration())
	assert.False(t, cfg.GetValidateSSL())
	assert.Equal(t, "http://localhost:8080", cfg.Specs["local"].BaseURI)
}

func TestLoadConfig_LookupOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".reqspecrc.json"), []byte(`{"timeout": 1000}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".reqspec.yml"), []byte("timeout: 2000\n"), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Timeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		msg     string
	}{
		{"bad json", "c.json", `{"timeout": `, "parsing config"},
		{"bad yaml", "c.yaml", "timeout: [1", "parsing config"},
		{"unknown parent", "c.yaml", "specs:\n  a:\n    extends: missing\n", `extends unknown spec "missing"`},
		{"cycle", "c.yaml", "specs:\n  a:\n    extends: b\n  b:\n    extends: a\n", "cycle"},
		{"negative timeout", "c.json", `{"timeout": -1}`, "timeout must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"Accept": "application/json"}
	base.Specs = map[string]SpecConfig{"a": {BaseURI: "http://a"}}

	other := &Config{
		Timeout:   1000,
		Bail:      BoolPtr(true),
		Headers:   map[string]string{"X-Env": "ci"},
		Specs:     map[string]SpecConfig{"b": {BaseURI: "http://b"}},
		RateLimit: 3,
	}

	merged := base.Merge(other)
	assert.Equal(t, 1000, merged.Timeout)
	assert.True(t, merged.GetBail())
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Env": "ci"}, merged.Headers)
	assert.Len(t, merged.Specs, 2)
	assert.Equal(t, 3.0, merged.RateLimit)

	assert.Len(t, base.Specs, 1, "base untouched")
	assert.Same(t, base, base.Merge(nil))
}

func TestConfig_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Specs = map[string]SpecConfig{"reqres": {BaseURI: "https://reqres.in"}}

	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveConfig(path))

		loaded, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "https://reqres.in", loaded.Specs["reqres"].BaseURI)
	}
}
