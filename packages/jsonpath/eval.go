package jsonpath

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Get evaluates expr against a JSON body.
func Get(body []byte, expr string) (any, error) {
	path, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return path.Evaluate(body)
}

// GetString is Get for string bodies.
func GetString(body, expr string) (any, error) {
	return Get([]byte(body), expr)
}

// Evaluate runs the path against a JSON body.
func (p Path) Evaluate(body []byte) (any, error) {
	root, err := parseDocument(p.Expr, body)
	if err != nil {
		return nil, err
	}
	return p.EvaluateResult(root)
}

// EvaluateResult runs the path against an already parsed document.
func (p Path) EvaluateResult(root gjson.Result) (any, error) {
	v, found, err := p.eval(root, p.Segments)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newError(p.Expr, "", ErrFieldNotFound, "no value at path")
	}
	return v, nil
}

func parseDocument(expr string, body []byte) (gjson.Result, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return gjson.Result{}, newError(expr, "", ErrFieldNotFound, "response body is empty")
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, newError(expr, "", ErrMalformedJSON, "body is not valid JSON")
	}
	return gjson.ParseBytes(body), nil
}

// eval walks segs from cur. found is false when a field lookup produced the
// missing marker somewhere along the way.
func (p Path) eval(cur gjson.Result, segs []Segment) (any, bool, error) {
	for i, seg := range segs {
		switch seg.Kind {
		case SegmentField:
			if !cur.IsObject() {
				return nil, false, newError(p.Expr, seg.String(), ErrTypeMismatch, "cannot access field of %s", typeName(cur))
			}
			next, ok := lookup(cur, seg.Name)
			if !ok {
				return nil, false, nil
			}
			cur = next

		case SegmentIndex:
			if !cur.IsArray() {
				return nil, false, newError(p.Expr, seg.String(), ErrTypeMismatch, "cannot index %s", typeName(cur))
			}
			items := cur.Array()
			if seg.Index >= len(items) {
				return nil, false, newError(p.Expr, seg.String(), ErrIndexOutOfRange, "index %d, length %d", seg.Index, len(items))
			}
			cur = items[seg.Index]

		case SegmentWildcard:
			if !cur.IsArray() && !cur.IsObject() {
				return nil, false, newError(p.Expr, seg.String(), ErrTypeMismatch, "cannot collect from %s", typeName(cur))
			}
			out := make([]any, 0)
			var walkErr error
			cur.ForEach(func(_, elem gjson.Result) bool {
				v, ok, err := p.eval(elem, segs[i+1:])
				if err != nil {
					walkErr = err
					return false
				}
				if ok {
					out = append(out, v)
				}
				return true
			})
			if walkErr != nil {
				return nil, false, walkErr
			}
			return out, true, nil

		case SegmentFilter:
			if !cur.IsArray() {
				return nil, false, newError(p.Expr, seg.String(), ErrTypeMismatch, "cannot filter %s", typeName(cur))
			}
			matched := filter(cur, seg.Filter)
			if seg.Filter.FirstOnly {
				if len(matched) == 0 {
					return nil, false, nil
				}
				cur = matched[0]
				continue
			}
			cur = joinArray(matched)
		}
	}
	return toValue(cur), true, nil
}

// lookup returns the first member named exactly name.
func lookup(obj gjson.Result, name string) (gjson.Result, bool) {
	var (
		found gjson.Result
		ok    bool
	)
	obj.ForEach(func(key, value gjson.Result) bool {
		if key.Str == name {
			found, ok = value, true
			return false
		}
		return true
	})
	return found, ok
}

func filter(arr gjson.Result, pred *Predicate) []gjson.Result {
	var out []gjson.Result
	arr.ForEach(func(_, elem gjson.Result) bool {
		for _, c := range pred.Conjuncts {
			if !c.holds(elem) {
				return true
			}
		}
		out = append(out, elem)
		return !pred.FirstOnly
	})
	return out
}

func joinArray(items []gjson.Result) gjson.Result {
	raws := make([]string, len(items))
	for i, it := range items {
		raws[i] = it.Raw
	}
	return gjson.Parse("[" + strings.Join(raws, ",") + "]")
}

func (c Condition) holds(elem gjson.Result) bool {
	operand := elem
	for _, f := range c.Field {
		if !operand.IsObject() {
			return false
		}
		next, ok := lookup(operand, f)
		if !ok {
			return false
		}
		operand = next
	}

	switch c.Literal.Kind {
	case LiteralString:
		if operand.Type != gjson.String {
			return c.Op == OpNotEquals
		}
		switch c.Op {
		case OpEquals:
			return operand.Str == c.Literal.Str
		case OpNotEquals:
			return operand.Str != c.Literal.Str
		}
		return false

	case LiteralNumber:
		if operand.Type != gjson.Number {
			return c.Op == OpNotEquals
		}
		return compareFloat(operand.Num, c.Op, c.Literal.Num)

	case LiteralBool:
		isBool := operand.Type == gjson.True || operand.Type == gjson.False
		if !isBool {
			return c.Op == OpNotEquals
		}
		switch c.Op {
		case OpEquals:
			return operand.Bool() == c.Literal.Bool
		case OpNotEquals:
			return operand.Bool() != c.Literal.Bool
		}
		return false

	case LiteralNull:
		switch c.Op {
		case OpEquals:
			return operand.Type == gjson.Null
		case OpNotEquals:
			return operand.Type != gjson.Null
		}
	}
	return false
}

func compareFloat(a float64, op Operator, b float64) bool {
	switch op {
	case OpEquals:
		return a == b
	case OpNotEquals:
		return a != b
	case OpGreaterThan:
		return a > b
	case OpGreaterOrEqual:
		return a >= b
	case OpLessThan:
		return a < b
	case OpLessOrEqual:
		return a <= b
	}
	return false
}

// toValue converts a gjson node into plain Go values. Integral literals that
// fit become int64, all other numbers float64.
func toValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.String:
		return r.Str
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return i
			}
		}
		return r.Num
	}

	if r.IsArray() {
		out := make([]any, 0)
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, toValue(v))
			return true
		})
		return out
	}

	out := make(map[string]any)
	r.ForEach(func(k, v gjson.Result) bool {
		if _, dup := out[k.Str]; !dup {
			out[k.Str] = toValue(v)
		}
		return true
	})
	return out
}

func typeName(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	}
	if r.IsArray() {
		return "array"
	}
	return "object"
}
