package mock

import (
	"regexp"
	"strings"
	"sync"
)

var paramPattern = regexp.MustCompile(`\{(\w+)\}`)

// Router matches incoming requests to routes in registration order.
type Router struct {
	mu     sync.RWMutex
	routes []*Route
}

func NewRouter() *Router {
	return &Router{}
}

// AddRoute compiles the route's path pattern and appends it.
func (r *Router) AddRoute(route *Route) {
	route.Method = strings.ToUpper(route.Method)
	route.Path = normalizePath(route.Path)
	route.pathRegex = createPathRegex(route.Path)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *Router) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Route{}, r.routes...)
}

// Match finds the first route whose method, path and conditions accept req.
func (r *Router) Match(req *incoming) (*Route, map[string]string) {
	path := normalizePath(req.path)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, route := range r.routes {
		if route.Method != "" && route.Method != "*" && route.Method != req.method {
			continue
		}
		params := matchPath(route, path)
		if params == nil {
			continue
		}
		if !route.When.accepts(req) {
			continue
		}
		return route, params
	}
	return nil, nil
}

// PathAllowed reports whether any route serves path, ignoring method and
// conditions.
func (r *Router) PathAllowed(path string) bool {
	path = normalizePath(path)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, route := range r.routes {
		if matchPath(route, path) != nil {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

// createPathRegex turns /api/users/{id} into ^/api/users/(?P<id>[^/]+)$.
func createPathRegex(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteByte('^')
	last := 0
	for _, m := range paramPattern.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:m[0]]))
		b.WriteString(`(?P<` + pattern[m[2]:m[3]] + `>[^/]+)`)
		last = m[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteByte('$')
	return regexp.MustCompile(b.String())
}

func matchPath(route *Route, path string) map[string]string {
	matches := route.pathRegex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}
	params := make(map[string]string)
	for i, name := range route.pathRegex.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = matches[i]
		}
	}
	return params
}
