package mock

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/assertions"
	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
	"gopkg.in/yaml.v3"
)

// Route is one stubbed endpoint. Path may hold {param} segments, which are
// available to the response as {{param}}.
type Route struct {
	Name     string    `yaml:"name,omitempty"`
	Method   string    `yaml:"method"`
	Path     string    `yaml:"path"`
	When     Condition `yaml:"when,omitempty"`
	Response Reply     `yaml:"response"`

	pathRegex *regexp.Regexp
}

// Condition narrows a route to requests carrying the given query values,
// headers and JSON body values. Body keys are path expressions.
type Condition struct {
	Query   map[string]string `yaml:"query,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    map[string]any    `yaml:"body,omitempty"`
	// Missing lists body paths that must be absent.
	Missing []string `yaml:"missing,omitempty"`
}

// Reply is the canned response. Body strings are sent as is; any other
// value is encoded as JSON after placeholder substitution.
type Reply struct {
	Status      int               `yaml:"status,omitempty"`
	ContentType string            `yaml:"contentType,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	Body        any               `yaml:"body,omitempty"`
	Delay       time.Duration     `yaml:"delay,omitempty"`
}

type incoming struct {
	method  string
	path    string
	query   map[string][]string
	headers map[string][]string
	body    *jsonpath.Document
}

func (c Condition) accepts(req *incoming) bool {
	for k, want := range c.Query {
		got := req.query[k]
		if len(got) == 0 || got[0] != want {
			return false
		}
	}
	for k, want := range c.Headers {
		found := false
		for name, values := range req.headers {
			if strings.EqualFold(name, k) && len(values) > 0 && values[0] == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for path, want := range c.Body {
		got, err := req.body.Get(path)
		if err != nil || !assertions.EqualTo(want).Matches(got) {
			return false
		}
	}
	for _, path := range c.Missing {
		if v, err := req.body.Get(path); err == nil && v != nil {
			return false
		}
	}
	return true
}

type routeFile struct {
	Routes []*Route `yaml:"routes"`
}

// LoadFile reads routes from a YAML file with a top-level routes list.
func (s *Server) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file routeFile
	if err := dec.Decode(&file); err != nil {
		return fmt.Errorf("failed to parse routes %s: %w", path, err)
	}

	for i, route := range file.Routes {
		if route.Path == "" {
			return fmt.Errorf("%s: route %d has no path", path, i+1)
		}
		s.router.AddRoute(route)
	}
	return nil
}

// LoadFiles loads routes from several files in order.
func (s *Server) LoadFiles(paths []string) error {
	for _, path := range paths {
		if err := s.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}
