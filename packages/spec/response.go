package spec

import (
	"fmt"

	"github.com/abdul-hamid-achik/reqspec/packages/assertions"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
)

// ResponseSpec is a reusable set of expectations on a response. Unset fields
// are not checked.
type ResponseSpec struct {
	StatusCode  *int
	ContentType http.ContentType
	// Schema is an inline JSON Schema or a path to one.
	Schema string

	schema assertions.Matcher
}

type ResponseSpecOptions struct {
	StatusCode  int
	ContentType http.ContentType
	Schema      string
	// SchemaDir resolves relative schema paths.
	SchemaDir string
}

func NewResponseSpec(opts ResponseSpecOptions) ResponseSpec {
	s := ResponseSpec{ContentType: opts.ContentType, Schema: opts.Schema}
	if opts.StatusCode != 0 {
		code := opts.StatusCode
		s.StatusCode = &code
	}
	if opts.Schema != "" {
		s.schema = assertions.MatchesSchemaIn(opts.Schema, opts.SchemaDir)
	}
	return s
}

// Validate checks resp against every expectation that is set and returns the
// first *assertions.AssertionFailure.
func (s ResponseSpec) Validate(resp *http.Response) error {
	if resp == nil {
		return fmt.Errorf("no response to validate")
	}

	if s.StatusCode != nil {
		if err := assertions.ExpectWithReason("status", resp, assertions.StatusCodeEquals(*s.StatusCode)); err != nil {
			return err
		}
	}

	if s.ContentType.IsSet() {
		if err := assertions.ExpectWithReason("content type", resp.ContentType, contentTypeMatcher(s.ContentType)); err != nil {
			return err
		}
	}

	if s.Schema != "" {
		m := s.schema
		if m == nil {
			m = assertions.MatchesSchema(s.Schema)
		}
		if err := assertions.ExpectWithReason("body", resp.Body, m); err != nil {
			return err
		}
	}

	return nil
}

func contentTypeMatcher(ct http.ContentType) assertions.Matcher {
	return assertions.MatcherFunc("content type "+ct.String(), func(actual any) bool {
		header, ok := actual.(string)
		return ok && ct.Matches(header)
	})
}
