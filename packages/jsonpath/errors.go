package jsonpath

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax          = errors.New("invalid path expression")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrFieldNotFound   = errors.New("field not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrMalformedJSON   = errors.New("malformed JSON document")
)

// PathError describes a failure while parsing or evaluating an expression.
type PathError struct {
	Expr    string
	Segment string
	Err     error
	Detail  string
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("jsonpath %q: %v", e.Expr, e.Err)
	if e.Segment != "" {
		msg += fmt.Sprintf(" at %q", e.Segment)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *PathError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(expr, segment string, kind error, format string, args ...any) *PathError {
	return &PathError{
		Expr:    expr,
		Segment: segment,
		Err:     kind,
		Detail:  fmt.Sprintf(format, args...),
	}
}
