// Package mock serves canned HTTP responses for offline contract tests.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/core/env"
	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
	"github.com/rs/zerolog"
)

// Server is a stub HTTP server driven by a route table.
type Server struct {
	router *Router
	addr   string
	delay  time.Duration
	logger zerolog.Logger

	mu       sync.Mutex
	requests []Recorded
}

// Recorded is a request the server has answered.
type Recorded struct {
	Method string
	Path   string
	Route  string
	Status int
	Body   []byte
}

// Option is a functional option for Server
type Option func(*Server)

// WithAddr sets the listen address used by StartWithContext
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithPort is shorthand for WithAddr(":port")
func WithPort(port int) Option {
	return func(s *Server) {
		s.addr = fmt.Sprintf(":%d", port)
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithLogger logs one event per request at debug level
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		addr:   ":3000",
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRoute registers a route programmatically.
func (s *Server) AddRoute(route *Route) {
	s.router.AddRoute(route)
}

func (s *Server) Routes() []*Route {
	return s.router.Routes()
}

// Requests returns every request answered so far, oldest first.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded{}, s.requests...)
}

// Handler returns the server as an http.Handler, for httptest or embedding.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRequest)
}

// StartWithContext listens until ctx is done, then shuts down gracefully.
func (s *Server) StartWithContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve answers on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Int("routes", len(s.router.Routes())).Msg("stub server listening")
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, _ := io.ReadAll(r.Body)
	in := &incoming{
		method:  r.Method,
		path:    r.URL.Path,
		query:   r.URL.Query(),
		headers: r.Header,
		body:    jsonpath.From(body),
	}

	route, params := s.router.Match(in)
	if route == nil {
		status := http.StatusNotFound
		if s.router.PathAllowed(r.URL.Path) {
			status = http.StatusMethodNotAllowed
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{}"))
		s.record(r, "", status, body, start)
		return
	}

	reply := route.Response
	if d := s.delay + reply.Delay; d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
	}

	payload, contentType, err := s.render(reply, params, in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.record(r, route.Name, http.StatusInternalServerError, body, start)
		return
	}

	for key, value := range reply.Headers {
		w.Header().Set(key, value)
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(payload)
	s.record(r, route.Name, status, body, start)
}

func (s *Server) record(r *http.Request, route string, status int, body []byte, start time.Time) {
	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Route:  route,
		Status: status,
		Body:   body,
	})
	s.mu.Unlock()

	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("route", route).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("stub request")
}

// render substitutes {{param}}, {{query.name}} and {{body.path}} placeholders
// and template functions into the reply body.
func (s *Server) render(reply Reply, params map[string]string, in *incoming) ([]byte, string, error) {
	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		s.logger.Warn().Str("path", in.path).Msgf(format, args...)
	})
	for k, v := range params {
		resolver.SetVariable(k, v)
	}
	resolver.AddSource(func(name string) (any, bool) {
		switch {
		case strings.HasPrefix(name, "query."):
			values := in.query[strings.TrimPrefix(name, "query.")]
			if len(values) == 0 {
				return nil, false
			}
			return values[0], true
		case strings.HasPrefix(name, "body."):
			v, err := in.body.Get(strings.TrimPrefix(name, "body."))
			return v, err == nil
		}
		return nil, false
	})

	contentType := reply.ContentType
	switch body := reply.Body.(type) {
	case nil:
		return nil, contentType, nil
	case string:
		if contentType == "" {
			contentType = "text/plain; charset=utf-8"
		}
		return []byte(resolver.Resolve(body)), contentType, nil
	default:
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		payload, err := json.Marshal(resolver.ResolveValue(body))
		return payload, contentType, err
	}
}
