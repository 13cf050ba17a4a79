package jsonpath

import (
	"strconv"
	"strings"
	"unicode"
)

// Parse compiles a path expression. The empty expression addresses the root.
func Parse(expr string) (Path, error) {
	path := Path{Expr: expr}
	if strings.TrimSpace(expr) == "" {
		return path, nil
	}

	parts, err := splitSegments(expr)
	if err != nil {
		return Path{}, err
	}

	for _, raw := range parts {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return Path{}, newError(expr, "", ErrSyntax, "empty segment")
		}
		segs, err := parseSegment(expr, raw)
		if err != nil {
			return Path{}, err
		}
		path.Segments = append(path.Segments, segs...)
	}
	return path, nil
}

// MustParse is like Parse but panics on error. Intended for package-level paths.
func MustParse(expr string) Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// splitSegments splits on dots that are outside brackets, braces and quotes.
func splitSegments(expr string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	depth := 0
	var quote rune
	escaped := false

	for _, r := range expr {
		if quote != 0 {
			cur.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth < 0 {
				return nil, newError(expr, "", ErrSyntax, "unbalanced %q", r)
			}
		case '.':
			if depth == 0 {
				parts = append(parts, cur.String())
				cur.Reset()
				continue
			}
		}
		cur.WriteRune(r)
	}

	if quote != 0 {
		return nil, newError(expr, "", ErrSyntax, "unterminated string literal")
	}
	if depth != 0 {
		return nil, newError(expr, "", ErrSyntax, "unbalanced brackets")
	}
	return append(parts, cur.String()), nil
}

func parseSegment(expr, raw string) ([]Segment, error) {
	if body, rest, first, ok := cutPredicate(raw); ok {
		pred, err := parsePredicate(expr, raw, body, first)
		if err != nil {
			return nil, err
		}
		segs := []Segment{{Kind: SegmentFilter, Filter: pred}}
		more, err := parseBrackets(expr, raw, rest)
		if err != nil {
			return nil, err
		}
		return append(segs, more...), nil
	}

	name := raw
	rest := ""
	if i := strings.IndexByte(raw, '['); i >= 0 {
		name, rest = strings.TrimSpace(raw[:i]), raw[i:]
	}
	if strings.ContainsAny(name, "{}'\"] \t") {
		return nil, newError(expr, raw, ErrSyntax, "invalid field name %q", name)
	}

	var segs []Segment
	switch name {
	case "":
	case "*":
		segs = append(segs, Segment{Kind: SegmentWildcard})
	default:
		segs = append(segs, Segment{Kind: SegmentField, Name: name})
	}

	more, err := parseBrackets(expr, raw, rest)
	if err != nil {
		return nil, err
	}
	return append(segs, more...), nil
}

// cutPredicate recognises findAll{...} and find{...} and returns the closure
// body plus anything trailing the closing brace.
func cutPredicate(raw string) (body, rest string, first, ok bool) {
	var after string
	switch {
	case strings.HasPrefix(raw, "findAll"):
		after = raw[len("findAll"):]
	case strings.HasPrefix(raw, "find"):
		after = raw[len("find"):]
		first = true
	default:
		return "", "", false, false
	}
	after = strings.TrimLeft(after, " \t")
	if !strings.HasPrefix(after, "{") {
		return "", "", false, false
	}

	end := matchingClose(after, '{', '}')
	if end < 0 {
		return "", "", false, false
	}
	return after[1:end], strings.TrimSpace(after[end+1:]), first, true
}

// matchingClose returns the index of the bracket closing s[0], honouring quotes.
func matchingClose(s string, open, close byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseBrackets(expr, raw, s string) ([]Segment, error) {
	var segs []Segment
	for s != "" {
		if s[0] != '[' {
			return nil, newError(expr, raw, ErrSyntax, "unexpected %q", s)
		}
		end := matchingClose(s, '[', ']')
		if end < 0 {
			return nil, newError(expr, raw, ErrSyntax, "unbalanced brackets")
		}
		content := strings.TrimSpace(s[1:end])
		s = strings.TrimSpace(s[end+1:])

		switch {
		case content == "*":
			segs = append(segs, Segment{Kind: SegmentWildcard})
		case isQuoted(content):
			segs = append(segs, Segment{Kind: SegmentField, Name: unquote(content)})
		case strings.HasPrefix(content, "-"):
			return nil, newError(expr, raw, ErrSyntax, "negative index %s is not supported", content)
		default:
			idx, err := strconv.Atoi(content)
			if err != nil {
				return nil, newError(expr, raw, ErrSyntax, "invalid index %q", content)
			}
			segs = append(segs, Segment{Kind: SegmentIndex, Index: idx})
		}
	}
	return segs, nil
}

func parsePredicate(expr, raw, body string, first bool) (*Predicate, error) {
	pred := &Predicate{Param: "it", FirstOnly: first}

	body = strings.TrimSpace(body)
	if i := indexOutsideQuotes(body, "->"); i >= 0 {
		pred.Param = strings.TrimSpace(body[:i])
		body = body[i+2:]
		if !isIdent(pred.Param) {
			return nil, newError(expr, raw, ErrSyntax, "invalid closure parameter %q", pred.Param)
		}
	}

	for _, part := range splitOutsideQuotes(body, "&&") {
		cond, err := parseCondition(pred.Param, strings.TrimSpace(part))
		if err != nil {
			return nil, newError(expr, raw, ErrSyntax, "%v", err)
		}
		pred.Conjuncts = append(pred.Conjuncts, cond)
	}
	return pred, nil
}

var operators = []struct {
	token string
	op    Operator
}{
	{">=", OpGreaterOrEqual},
	{"<=", OpLessOrEqual},
	{"==", OpEquals},
	{"!=", OpNotEquals},
	{">", OpGreaterThan},
	{"<", OpLessThan},
}

type conditionError string

func (e conditionError) Error() string { return string(e) }

func parseCondition(param, s string) (Condition, error) {
	if s == "" {
		return Condition{}, conditionError("empty condition")
	}

	pos, token, op := -1, "", OpEquals
	var quote byte
	for i := 0; i < len(s) && pos < 0; i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
			continue
		}
		for _, o := range operators {
			if strings.HasPrefix(s[i:], o.token) {
				pos, token, op = i, o.token, o.op
				break
			}
		}
	}
	if pos < 0 {
		return Condition{}, conditionError("missing comparison operator in " + strconv.Quote(s))
	}

	left := strings.TrimSpace(s[:pos])
	right := strings.TrimSpace(s[pos+len(token):])

	parts := strings.Split(left, ".")
	if parts[0] != param {
		return Condition{}, conditionError("operand " + strconv.Quote(left) + " does not reference " + strconv.Quote(param))
	}
	for _, f := range parts[1:] {
		if f == "" || strings.ContainsAny(f, " \t") {
			return Condition{}, conditionError("invalid field reference " + strconv.Quote(left))
		}
	}

	lit, err := parseLiteral(right)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Field: parts[1:], Op: op, Literal: lit}, nil
}

func parseLiteral(s string) (Literal, error) {
	switch {
	case isQuoted(s):
		return Literal{Kind: LiteralString, Str: unquote(s)}, nil
	case s == "true" || s == "false":
		return Literal{Kind: LiteralBool, Bool: s == "true"}, nil
	case s == "null":
		return Literal{Kind: LiteralNull}, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Literal{}, conditionError("invalid literal " + strconv.Quote(s))
	}
	return Literal{Kind: LiteralNumber, Num: n}, nil
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	return (q == '\'' || q == '"') && s[len(s)-1] == q && matchingQuote(s) == len(s)-1
}

// matchingQuote returns the index of the quote closing s[0].
func matchingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == s[0] {
			return i
		}
	}
	return -1
}

func unquote(s string) string {
	inner := s[1 : len(s)-1]
	if !strings.Contains(inner, `\`) {
		return inner
	}
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

func indexOutsideQuotes(s, sub string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
			continue
		}
		if strings.HasPrefix(s[i:], sub) {
			return i
		}
	}
	return -1
}

func splitOutsideQuotes(s, sep string) []string {
	var parts []string
	for {
		i := indexOutsideQuotes(s, sep)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+len(sep):]
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
