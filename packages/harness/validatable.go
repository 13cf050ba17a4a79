package harness

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/reqspec/packages/assertions"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
	"github.com/abdul-hamid-achik/reqspec/packages/spec"
)

// Then checks expectations against a test: the first failure is reported
// and stops the test.
func (r *Result) Then(t assertions.TestingT) *ValidatableResponse {
	t.Helper()
	v := &ValidatableResponse{t: t, resp: r.Response}
	if r.Err != nil {
		v.fail(r.Err)
	}
	return v
}

// Validate checks expectations without a test; see Err.
func (r *Result) Validate() *ValidatableResponse {
	v := &ValidatableResponse{resp: r.Response}
	if r.Err != nil {
		v.fail(r.Err)
	}
	return v
}

// ValidatableResponse chains expectations on a response. Once one fails the
// rest are skipped.
type ValidatableResponse struct {
	t    assertions.TestingT
	resp *http.Response
	doc  *jsonpath.Document
	err  error
}

func (v *ValidatableResponse) fail(err error) {
	v.err = err
	if v.t != nil {
		v.t.Helper()
		v.t.Errorf("%s", err)
		v.t.FailNow()
	}
}

func (v *ValidatableResponse) check(fn func() error) *ValidatableResponse {
	if v.err != nil {
		return v
	}
	if v.t != nil {
		v.t.Helper()
	}
	if err := fn(); err != nil {
		v.fail(err)
	}
	return v
}

func (v *ValidatableResponse) document() *jsonpath.Document {
	if v.doc == nil {
		v.doc = v.resp.JSON()
	}
	return v.doc
}

func (v *ValidatableResponse) StatusCode(code int) *ValidatableResponse {
	return v.check(func() error {
		return assertions.ExpectWithReason("status", v.resp, assertions.StatusCodeEquals(code))
	})
}

// ContentType expects the Content-Type media type, ignoring parameters.
func (v *ValidatableResponse) ContentType(ct http.ContentType) *ValidatableResponse {
	return v.check(func() error {
		return spec.NewResponseSpec(spec.ResponseSpecOptions{ContentType: ct}).Validate(v.resp)
	})
}

// Body evaluates path against the JSON body and matches the value. A path
// with no value fails with jsonpath.ErrFieldNotFound; use NoPath to expect that.
func (v *ValidatableResponse) Body(path string, m assertions.Matcher) *ValidatableResponse {
	return v.check(func() error {
		actual, err := v.document().Get(path)
		if err != nil {
			return err
		}
		return assertions.ExpectWithReason(path, actual, m)
	})
}

// NoPath passes when path has no value in the body, including an empty body.
// A present value, even null, fails.
func (v *ValidatableResponse) NoPath(path string) *ValidatableResponse {
	return v.check(func() error {
		actual, err := v.document().Get(path)
		if err != nil && !errors.Is(err, jsonpath.ErrFieldNotFound) {
			return err
		}
		return assertions.ExpectPresence(path, err == nil, false, actual)
	})
}

// Header matches the first value of a header. A missing header is matched as null.
func (v *ValidatableResponse) Header(name string, m assertions.Matcher) *ValidatableResponse {
	return v.check(func() error {
		var actual any
		if values := v.resp.HeaderValues(name); len(values) > 0 {
			actual = values[0]
		}
		return assertions.ExpectWithReason("header "+name, actual, m)
	})
}

// Spec validates the response against a reusable response spec.
func (v *ValidatableResponse) Spec(s spec.ResponseSpec) *ValidatableResponse {
	return v.check(func() error {
		return s.Validate(v.resp)
	})
}

// Err returns the first failure, or nil.
func (v *ValidatableResponse) Err() error {
	return v.err
}

// Extract moves on to reading values out of the response.
func (v *ValidatableResponse) Extract() *Extractable {
	return &Extractable{v: v}
}

// Extractable reads values from a validated response. With Then, read errors
// fail the test; with Validate they are returned and recorded in Err.
type Extractable struct {
	v *ValidatableResponse
}

func (e *Extractable) Response() *http.Response {
	return e.v.resp
}

func (e *Extractable) Document() *jsonpath.Document {
	if e.v.resp == nil {
		return jsonpath.From(nil)
	}
	return e.v.document()
}

func (e *Extractable) Path(expr string) (any, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	val, err := e.v.document().Get(expr)
	return val, e.report(err)
}

func (e *Extractable) String(expr string) string {
	if e.usable() != nil {
		return ""
	}
	s, err := e.v.document().GetString(expr)
	_ = e.report(err)
	return s
}

func (e *Extractable) Int(expr string) int {
	if e.usable() != nil {
		return 0
	}
	n, err := e.v.document().GetInt(expr)
	_ = e.report(err)
	return n
}

// As maps the whole body onto target, see jsonpath.GetObject.
func (e *Extractable) As(target any) error {
	return e.AsAt("", target)
}

// AsAt maps the value at prefix onto target.
func (e *Extractable) AsAt(prefix string, target any) error {
	if err := e.usable(); err != nil {
		return err
	}
	return e.report(e.v.document().GetObject(prefix, target))
}

func (e *Extractable) usable() error {
	if e.v.err != nil {
		return e.v.err
	}
	if e.v.resp == nil {
		err := fmt.Errorf("no response to extract from")
		e.v.fail(err)
		return err
	}
	return nil
}

func (e *Extractable) report(err error) error {
	if err != nil && e.v.err == nil {
		e.v.fail(err)
	}
	return err
}
