package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		events = append(events, ev)
	}
	return events
}

func TestLoggingFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Missing password"}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	spec := NewRequestSpec(SpecOptions{
		BaseURI: server.URL,
		Headers: map[string]string{"Authorization": "Bearer secret"},
		Filters: []Filter{
			NewRequestLoggingFilter(logger, WithCurl(true), WithBody(true)),
			NewResponseLoggingFilter(logger, WithBody(true)),
		},
	})

	_, err := NewClient().Post(context.Background(), spec, "/api/login", map[string]string{"email": "peter@klaven"})
	require.NoError(t, err)

	events := decodeLines(t, &buf)
	require.Len(t, events, 2)

	req := events[0]
	assert.Equal(t, "debug", req["level"])
	assert.Equal(t, "sending request", req["message"])
	assert.Equal(t, "POST", req["method"])
	assert.Equal(t, server.URL+"/api/login", req["url"])
	assert.Equal(t, `{"email":"peter@klaven"}`, req["body"])
	headers := req["headers"].(map[string]any)
	assert.Equal(t, redacted, headers["Authorization"])
	assert.Contains(t, req["curl"], "curl -X POST")
	assert.NotContains(t, req["curl"], "secret")

	resp := events[1]
	assert.Equal(t, "warn", resp["level"])
	assert.Equal(t, float64(400), resp["status"])
	assert.Equal(t, `{"error":"Missing password"}`, resp["body"])
	assert.NotEmpty(t, resp["request_id"])
}

func TestLoggingFilters_BelowLevel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	spec := NewRequestSpec(SpecOptions{
		BaseURI: server.URL,
		Filters: []Filter{NewRequestLoggingFilter(logger), NewResponseLoggingFilter(logger)},
	})

	_, err := NewClient().Get(context.Background(), spec, "/")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestWithRedactedHeaders(t *testing.T) {
	cfg := newLogConfig([]LogOption{WithRedactedHeaders("X-Token")})
	assert.Equal(t, redacted, cfg.mask("x-token", "abc"))
	assert.Equal(t, "Bearer x", cfg.mask("Authorization", "Bearer x"))
}

func TestCurlCommand(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		url     string
		headers map[string]string
		body    []byte
		want    string
	}{
		{
			name:   "get",
			method: "GET",
			url:    "https://reqres.in/api/users/2",
			want:   "curl -X GET https://reqres.in/api/users/2",
		},
		{
			name:    "headers sorted and quoted",
			method:  "POST",
			url:     "https://reqres.in/api/users",
			headers: map[string]string{"X-B": "2", "Content-Type": "application/json"},
			body:    []byte(`{"name":"morpheus"}`),
			want:    `curl -X POST -H 'Content-Type: application/json' -H 'X-B: 2' --data-raw '{"name":"morpheus"}' https://reqres.in/api/users`,
		},
		{
			name:   "single quote in body",
			method: "POST",
			url:    "http://localhost/x",
			body:   []byte(`it's`),
			want:   `curl -X POST --data-raw 'it'"'"'s' http://localhost/x`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurlCommand(tt.method, tt.url, tt.headers, tt.body))
		})
	}
}

func TestRedactHeaders(t *testing.T) {
	in := map[string]string{"authorization": "Bearer x", "Accept": "application/json"}
	out := RedactHeaders(in)
	assert.Equal(t, "[REDACTED]", out["authorization"])
	assert.Equal(t, "application/json", out["Accept"])
	assert.Equal(t, "Bearer x", in["authorization"])

	out = RedactHeaders(in, WithRedactedHeaders("Accept"))
	assert.Equal(t, "Bearer x", out["authorization"])
	assert.Equal(t, "[REDACTED]", out["Accept"])

	assert.Nil(t, RedactHeaders(nil))
}
