package suite

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/reqspec/packages/assertions"
	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
	"gopkg.in/yaml.v3"
)

type Suite struct {
	Name          string                               `yaml:"name"`
	Spec          string                               `yaml:"spec,omitempty"`
	Variables     map[string]any                       `yaml:"variables,omitempty"`
	Specs         map[string]config.SpecConfig         `yaml:"specs,omitempty"`
	ResponseSpecs map[string]config.ResponseSpecConfig `yaml:"responseSpecs,omitempty"`
	WaitFor       *WaitFor                             `yaml:"waitFor,omitempty"`
	Cases         []Case                               `yaml:"cases"`

	// Path is the file the suite was loaded from, empty for in-memory suites.
	Path string `yaml:"-"`
}

// WaitFor polls a URL before the first case until it answers with Status.
// Timeout and Interval are in milliseconds.
type WaitFor struct {
	URL      string `yaml:"url"`
	Status   int    `yaml:"status,omitempty"`
	Timeout  int    `yaml:"timeout,omitempty"`
	Interval int    `yaml:"interval,omitempty"`
}

type Case struct {
	Name        string            `yaml:"name"`
	Spec        string            `yaml:"spec,omitempty"`
	Method      string            `yaml:"method"`
	Path        string            `yaml:"path"`
	Query       map[string]string `yaml:"query,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	ContentType string            `yaml:"contentType,omitempty"`
	Body        any               `yaml:"body,omitempty"`
	Expect      Expect            `yaml:"expect,omitempty"`
	Extract     map[string]string `yaml:"extract,omitempty"`
	Skip        bool              `yaml:"skip,omitempty"`
}

// SpecName returns the case's spec, falling back to the suite default.
func (c Case) SpecName(s *Suite) string {
	if c.Spec != "" {
		return c.Spec
	}
	return s.Spec
}

type Expect struct {
	Status       int                    `yaml:"status,omitempty"`
	ContentType  string                 `yaml:"contentType,omitempty"`
	ResponseSpec string                 `yaml:"responseSpec,omitempty"`
	Headers      map[string]MatcherSpec `yaml:"headers,omitempty"`
	Body         []BodyExpectation      `yaml:"body,omitempty"`
}

// MatcherSpec is a one-key matcher config such as {equalTo: 2}.
type MatcherSpec map[string]any

// UnmarshalYAML also accepts a bare scalar, read as equalTo.
func (m *MatcherSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v any
		if err := node.Decode(&v); err != nil {
			return err
		}
		*m = MatcherSpec{assertions.KeyEqualTo: v}
		return nil
	}
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

// Build turns the config into a matcher, resolving schema paths against baseDir.
func (m MatcherSpec) Build(baseDir string) (assertions.Matcher, error) {
	return assertions.Build(m, baseDir)
}

// BodyExpectation pairs a path expression with a matcher:
//
//	- path: data[0].id
//	  equalTo: 7
//
// A path that must not be in the body is written with exists instead:
//
//	- path: token
//	  exists: false
type BodyExpectation struct {
	Path    string
	Exists  *bool
	Matcher MatcherSpec
}

func (b *BodyExpectation) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	path, ok := raw["path"].(string)
	if !ok {
		return fmt.Errorf("line %d: body expectation needs a string path", node.Line)
	}
	delete(raw, "path")
	b.Path = path
	if v, ok := raw["exists"]; ok {
		exists, ok := v.(bool)
		if !ok {
			return fmt.Errorf("line %d: exists must be true or false", node.Line)
		}
		b.Exists = &exists
		delete(raw, "exists")
	}
	if len(raw) > 0 {
		b.Matcher = raw
	}
	return nil
}

func (b BodyExpectation) MarshalYAML() (any, error) {
	out := make(map[string]any, len(b.Matcher)+1)
	for k, v := range b.Matcher {
		out[k] = v
	}
	out["path"] = b.Path
	if b.Exists != nil {
		out["exists"] = *b.Exists
	}
	return out, nil
}

// Describe renders the expectation for reports, e.g. "data.id equalTo 2".
func (b BodyExpectation) Describe() string {
	parts := make([]string, 0, len(b.Matcher)+1)
	if b.Exists != nil {
		parts = append(parts, fmt.Sprintf("exists %v", *b.Exists))
	}
	for k, v := range b.Matcher {
		parts = append(parts, fmt.Sprintf("%s %v", k, v))
	}
	return strings.TrimSpace(b.Path + " " + strings.Join(parts, ", "))
}
