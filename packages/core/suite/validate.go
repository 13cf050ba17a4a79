package suite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
)

var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true, "HEAD": true, "OPTIONS": true,
}

// Validate reports every structural problem in the suite. knownSpecs names
// request and response specs defined outside the suite, such as in config.
func (s *Suite) Validate(knownSpecs ...string) error {
	specs := make(map[string]bool)
	for _, name := range knownSpecs {
		specs[name] = true
	}
	for name := range s.Specs {
		specs[name] = true
	}
	for name := range s.ResponseSpecs {
		specs[name] = true
	}

	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(s.Cases) == 0 {
		add("suite %q has no cases", s.Name)
	}
	if s.Spec != "" && !specs[s.Spec] {
		add("suite %q: unknown spec %q", s.Name, s.Spec)
	}

	seen := make(map[string]bool)
	for i, c := range s.Cases {
		where := fmt.Sprintf("case %d", i+1)
		if c.Name != "" {
			where = fmt.Sprintf("case %q", c.Name)
			if seen[c.Name] {
				add("%s: duplicate name", where)
			}
			seen[c.Name] = true
		}

		if c.Method == "" {
			add("%s: missing method", where)
		} else if !knownMethods[strings.ToUpper(c.Method)] {
			add("%s: unsupported method %q", where, c.Method)
		}
		if c.Path == "" {
			add("%s: missing path", where)
		}

		name := c.SpecName(s)
		if name == "" && !isAbsolute(c.Path) {
			add("%s: no spec and path is not an absolute URL", where)
		} else if c.Spec != "" && !specs[c.Spec] {
			add("%s: unknown spec %q", where, c.Spec)
		}

		if c.ContentType != "" && !strings.Contains(http.ParseContentType(c.ContentType).String(), "/") {
			add("%s: bad content type %q", where, c.ContentType)
		}

		if rs := c.Expect.ResponseSpec; rs != "" && !specs[rs] {
			add("%s: unknown response spec %q", where, rs)
		}
		for header, m := range c.Expect.Headers {
			if _, err := m.Build(s.Dir()); err != nil {
				add("%s: header %s: %v", where, header, err)
			}
		}
		for j, b := range c.Expect.Body {
			if b.Path == "" {
				add("%s: body expectation %d: empty path", where, j+1)
			} else if _, err := jsonpath.Parse(b.Path); err != nil {
				add("%s: body expectation %d: %v", where, j+1, err)
			}
			switch {
			case b.Exists != nil && !*b.Exists && len(b.Matcher) > 0:
				add("%s: body %s: exists: false takes no matcher", where, b.Path)
			case b.Exists != nil && len(b.Matcher) == 0:
			default:
				if _, err := b.Matcher.Build(s.Dir()); err != nil {
					add("%s: body %s: %v", where, b.Path, err)
				}
			}
		}
		for v, p := range c.Extract {
			if _, err := jsonpath.Parse(p); err != nil {
				add("%s: extract %s: %v", where, v, err)
			}
		}
	}

	return errors.Join(errs...)
}

func isAbsolute(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "{{")
}
