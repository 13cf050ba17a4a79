package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
)

// Histogram bounds in microseconds: 1us to 60s, 3 significant digits.
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
	sigFigs      = 3
)

// LatencyFilter is an http.Filter that records the duration and outcome of
// every response it sees, overall and per route. It may be shared across
// goroutines.
type LatencyFilter struct {
	mu        sync.Mutex
	overall   *counter
	routes    map[string]*counter
	routeName func(resp *http.Response) string
}

type counter struct {
	total        int64
	success      int64
	clientErrors int64
	serverErrors int64
	histogram    *hdrhistogram.Histogram
}

func newCounter() *counter {
	return &counter{histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, sigFigs)}
}

func (c *counter) record(status int, d time.Duration) {
	c.total++
	switch {
	case status >= 500:
		c.serverErrors++
	case status >= 400:
		c.clientErrors++
	default:
		c.success++
	}

	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}
	_ = c.histogram.RecordValue(us)
}

func (c *counter) summary(name string) Summary {
	return Summary{
		Name:         name,
		Total:        c.total,
		Success:      c.success,
		ClientErrors: c.clientErrors,
		ServerErrors: c.serverErrors,
		P50:          micros(c.histogram.ValueAtQuantile(50)),
		P95:          micros(c.histogram.ValueAtQuantile(95)),
		P99:          micros(c.histogram.ValueAtQuantile(99)),
		Min:          micros(c.histogram.Min()),
		Max:          micros(c.histogram.Max()),
		Mean:         time.Duration(c.histogram.Mean() * float64(time.Microsecond)),
	}
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

type Option func(*LatencyFilter)

// WithRouteName overrides how responses are grouped. The default groups by
// method and request path without the query string.
func WithRouteName(fn func(resp *http.Response) string) Option {
	return func(f *LatencyFilter) {
		f.routeName = fn
	}
}

func NewLatencyFilter(opts ...Option) *LatencyFilter {
	f := &LatencyFilter{
		overall:   newCounter(),
		routes:    make(map[string]*counter),
		routeName: defaultRouteName,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func defaultRouteName(resp *http.Response) string {
	if resp.Request == nil {
		return ""
	}
	path := resp.Request.Path
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			path = path[:i]
			break
		}
	}
	return resp.Request.Method + " " + path
}

func (f *LatencyFilter) BeforeSend(req *http.Request) *http.Request {
	return req
}

func (f *LatencyFilter) AfterReceive(resp *http.Response) *http.Response {
	name := f.routeName(resp)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.overall.record(resp.StatusCode, resp.Duration)
	if name == "" {
		return resp
	}
	rc, ok := f.routes[name]
	if !ok {
		rc = newCounter()
		f.routes[name] = rc
	}
	rc.record(resp.StatusCode, resp.Duration)
	return resp
}

// Summary is a point-in-time view of recorded latencies.
type Summary struct {
	Name         string        `json:"name,omitempty"`
	Total        int64         `json:"total"`
	Success      int64         `json:"success"`
	ClientErrors int64         `json:"clientErrors"`
	ServerErrors int64         `json:"serverErrors"`
	P50          time.Duration `json:"p50"`
	P95          time.Duration `json:"p95"`
	P99          time.Duration `json:"p99"`
	Min          time.Duration `json:"min"`
	Max          time.Duration `json:"max"`
	Mean         time.Duration `json:"mean"`
}

// Summary returns totals over every recorded response.
func (f *LatencyFilter) Summary() Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overall.summary("")
}

// Routes returns one summary per route, sorted by name.
func (f *LatencyFilter) Routes() []Summary {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.routes))
	for name := range f.routes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Summary, 0, len(names))
	for _, name := range names {
		out = append(out, f.routes[name].summary(name))
	}
	return out
}

// Reset clears every recorded value.
func (f *LatencyFilter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overall = newCounter()
	f.routes = make(map[string]*counter)
}
