package assertions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type matchesSchema struct {
	source string
	schema *gojsonschema.Schema
	err    error
}

// MatchesSchema accepts JSON documents valid against a JSON Schema. schema is
// either an inline JSON document or a path to one. []byte and
// json.RawMessage values are validated as raw JSON; anything else is
// marshaled first.
func MatchesSchema(schema string) Matcher {
	return MatchesSchemaIn(schema, "")
}

// MatchesSchemaIn is MatchesSchema with schema paths resolved against baseDir.
func MatchesSchemaIn(schema, baseDir string) Matcher {
	m := &matchesSchema{source: schema}
	data, err := LoadSchema(schema, baseDir)
	if err != nil {
		m.err = err
		return m
	}
	m.schema, m.err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	return m
}

func (m *matchesSchema) Matches(actual any) bool {
	return m.validate(actual) == nil
}

func (m *matchesSchema) Describe() string {
	if m.err != nil {
		return fmt.Sprintf("a document matching schema (unusable schema: %v)", m.err)
	}
	if looksLikeJSON(m.source) {
		return "a document matching the given JSON schema"
	}
	return fmt.Sprintf("a document matching schema %s", m.source)
}

func (m *matchesSchema) DescribeMismatch(actual any) string {
	if err := m.validate(actual); err != nil {
		return err.Error()
	}
	return ""
}

func (m *matchesSchema) validate(actual any) error {
	if m.err != nil {
		return m.err
	}

	var doc []byte
	switch v := actual.(type) {
	case []byte:
		doc = v
	case json.RawMessage:
		doc = v
	default:
		b, err := json.Marshal(actual)
		if err != nil {
			return fmt.Errorf("failed to marshal actual value: %v", err)
		}
		doc = b
	}

	result, err := m.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(problems, "; "))
}

// LoadSchema returns the schema document for an inline JSON value or a file
// path. Relative paths resolve against baseDir, and must stay inside it when
// baseDir is set.
func LoadSchema(schema, baseDir string) ([]byte, error) {
	if looksLikeJSON(schema) {
		return []byte(schema), nil
	}

	path := schema
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	if err := validatePathWithinBase(path, baseDir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return data, nil
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// validatePathWithinBase checks that the resolved path stays within the base directory
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %v", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}
