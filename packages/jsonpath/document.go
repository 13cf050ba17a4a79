package jsonpath

import (
	"math"

	"github.com/tidwall/gjson"
)

// Document wraps a JSON body for repeated extraction.
type Document struct {
	body []byte
	root gjson.Result
	err  error
}

// From parses body once; parse failures surface on the first getter call.
func From(body []byte) *Document {
	d := &Document{body: body}
	d.root, d.err = parseDocument("", body)
	return d
}

func FromString(body string) *Document {
	return From([]byte(body))
}

func (d *Document) Get(expr string) (any, error) {
	path, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	if d.err != nil {
		if pe, ok := d.err.(*PathError); ok {
			copied := *pe
			copied.Expr = expr
			return nil, &copied
		}
		return nil, d.err
	}
	return path.EvaluateResult(d.root)
}

func (d *Document) GetString(expr string) (string, error) {
	v, err := d.Get(expr)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(expr, "string", v)
	}
	return s, nil
}

func (d *Document) GetInt(expr string) (int, error) {
	v, err := d.Get(expr)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		if n >= math.MinInt && n <= math.MaxInt {
			return int(n), nil
		}
	case float64:
		// -math.MinInt is 2^63 (or 2^31), exact as a float64 unlike MaxInt.
		if n == math.Trunc(n) && n >= math.MinInt && n < -math.MinInt {
			return int(n), nil
		}
	}
	return 0, mismatch(expr, "integer", v)
}

func (d *Document) GetFloat(expr string) (float64, error) {
	v, err := d.Get(expr)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, mismatch(expr, "number", v)
}

func (d *Document) GetBool(expr string) (bool, error) {
	v, err := d.Get(expr)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, mismatch(expr, "boolean", v)
	}
	return b, nil
}

func (d *Document) GetList(expr string) ([]any, error) {
	v, err := d.Get(expr)
	if err != nil {
		return nil, err
	}
	l, ok := v.([]any)
	if !ok {
		return nil, mismatch(expr, "array", v)
	}
	return l, nil
}

func (d *Document) GetMap(expr string) (map[string]any, error) {
	v, err := d.Get(expr)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(expr, "object", v)
	}
	return m, nil
}

func (d *Document) GetObject(prefix string, target any) error {
	return GetObject(d.body, prefix, target)
}

func mismatch(expr, want string, got any) error {
	return newError(expr, "", ErrTypeMismatch, "expected %s, got %s", want, describe(got))
}
