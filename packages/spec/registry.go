package spec

import (
	"sort"
	"sync"

	"github.com/abdul-hamid-achik/reqspec/packages/http"
)

// Registry is a concurrency-safe store of named specs.
type Registry struct {
	mu        sync.RWMutex
	requests  map[string]http.RequestSpec
	responses map[string]ResponseSpec
}

func NewRegistry() *Registry {
	return &Registry{
		requests:  make(map[string]http.RequestSpec),
		responses: make(map[string]ResponseSpec),
	}
}

// RegisterRequest stores s under name, replacing any previous value.
func (r *Registry) RegisterRequest(name string, s http.RequestSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[name] = s
}

func (r *Registry) Request(name string) (http.RequestSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.requests[name]
	return s, ok
}

func (r *Registry) RegisterResponse(name string, s ResponseSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[name] = s
}

func (r *Registry) Response(name string) (ResponseSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.responses[name]
	return s, ok
}

// Names returns the registered request spec names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.requests))
	for name := range r.requests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResponseNames returns the registered response spec names, sorted.
func (r *Registry) ResponseNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.responses))
	for name := range r.responses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
