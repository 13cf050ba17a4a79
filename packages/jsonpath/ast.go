package jsonpath

import (
	"strconv"
	"strings"
)

type SegmentKind int

const (
	SegmentField SegmentKind = iota
	SegmentIndex
	SegmentWildcard
	SegmentFilter
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentField:
		return "field"
	case SegmentIndex:
		return "index"
	case SegmentWildcard:
		return "wildcard"
	case SegmentFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// Segment is one step of a parsed path.
type Segment struct {
	Kind   SegmentKind
	Name   string
	Index  int
	Filter *Predicate
}

func (s Segment) String() string {
	switch s.Kind {
	case SegmentField:
		return s.Name
	case SegmentIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case SegmentWildcard:
		return "*"
	case SegmentFilter:
		return s.Filter.String()
	default:
		return "?"
	}
}

// Path is a parsed expression. An empty Path addresses the document root.
type Path struct {
	Expr     string
	Segments []Segment
}

func (p Path) String() string {
	return p.Expr
}

type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpGreaterThan
	OpGreaterOrEqual
	OpLessThan
	OpLessOrEqual
)

func (op Operator) String() string {
	switch op {
	case OpEquals:
		return "=="
	case OpNotEquals:
		return "!="
	case OpGreaterThan:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessOrEqual:
		return "<="
	default:
		return "unknown"
	}
}

type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
	LiteralNull
)

type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
	Bool bool
}

func (l Literal) String() string {
	switch l.Kind {
	case LiteralString:
		return "'" + strings.ReplaceAll(l.Str, "'", `\'`) + "'"
	case LiteralNumber:
		return strconv.FormatFloat(l.Num, 'f', -1, 64)
	case LiteralBool:
		return strconv.FormatBool(l.Bool)
	default:
		return "null"
	}
}

// Condition compares the element (Field empty) or one of its nested fields
// against a literal.
type Condition struct {
	Field   []string
	Op      Operator
	Literal Literal
}

// Predicate selects the elements of a collection matching every conjunct.
type Predicate struct {
	Param     string
	Conjuncts []Condition
	FirstOnly bool
}

func (p *Predicate) String() string {
	var b strings.Builder
	if p.FirstOnly {
		b.WriteString("find{")
	} else {
		b.WriteString("findAll{")
	}
	b.WriteString(p.Param)
	b.WriteString(" -> ")
	for i, c := range p.Conjuncts {
		if i > 0 {
			b.WriteString(" && ")
		}
		b.WriteString(strings.Join(append([]string{p.Param}, c.Field...), "."))
		b.WriteString(" ")
		b.WriteString(c.Op.String())
		b.WriteString(" ")
		b.WriteString(c.Literal.String())
	}
	b.WriteString("}")
	return b.String()
}
