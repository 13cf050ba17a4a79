package stats

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(method, path string, status int, d time.Duration) *http.Response {
	return &http.Response{
		StatusCode: status,
		Duration:   d,
		Request:    &http.Request{Method: method, Path: path},
	}
}

func TestLatencyFilter_Record(t *testing.T) {
	f := NewLatencyFilter()

	f.AfterReceive(response("GET", "/api/users?page=2", 200, 100*time.Millisecond))
	f.AfterReceive(response("GET", "/api/users?page=1", 200, 150*time.Millisecond))
	f.AfterReceive(response("GET", "/api/users/23", 404, 50*time.Millisecond))
	f.AfterReceive(response("POST", "/api/login", 500, 200*time.Millisecond))

	s := f.Summary()
	assert.Equal(t, int64(4), s.Total)
	assert.Equal(t, int64(2), s.Success)
	assert.Equal(t, int64(1), s.ClientErrors)
	assert.Equal(t, int64(1), s.ServerErrors)
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.Min), float64(time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64(s.Max), float64(time.Millisecond))
	assert.Greater(t, s.P99, s.P50)

	routes := f.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, "GET /api/users", routes[0].Name)
	assert.Equal(t, int64(2), routes[0].Total)
	assert.Equal(t, "GET /api/users/23", routes[1].Name)
	assert.Equal(t, "POST /api/login", routes[2].Name)
}

func TestLatencyFilter_ClampsOutOfRange(t *testing.T) {
	f := NewLatencyFilter()
	f.AfterReceive(response("GET", "/", 200, 0))
	f.AfterReceive(response("GET", "/", 200, 2*time.Minute))

	s := f.Summary()
	assert.Equal(t, int64(2), s.Total)
	assert.Equal(t, time.Microsecond, s.Min)
	assert.InDelta(t, float64(time.Minute), float64(s.Max), float64(100*time.Millisecond))
}

func TestLatencyFilter_CustomRouteName(t *testing.T) {
	f := NewLatencyFilter(WithRouteName(func(resp *http.Response) string { return "" }))
	f.AfterReceive(response("GET", "/", 200, time.Millisecond))

	assert.Equal(t, int64(1), f.Summary().Total)
	assert.Empty(t, f.Routes())

	f.Reset()
	assert.Equal(t, int64(0), f.Summary().Total)
}

func TestLatencyFilter_InFilterChain(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	f := NewLatencyFilter()
	spec := http.NewRequestSpec(http.SpecOptions{BaseURI: server.URL, Filters: []http.Filter{f}})
	client := http.NewClient()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Get(context.Background(), spec, "/ping")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s := f.Summary()
	assert.Equal(t, int64(10), s.Total)
	assert.Equal(t, int64(10), s.Success)
	require.Len(t, f.Routes(), 1)
	assert.Equal(t, "GET /ping", f.Routes()[0].Name)
}
