package assertions

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/reqspec/packages/http"
)

// Matcher is a predicate over a value plus a description of what it accepts.
type Matcher interface {
	Matches(actual any) bool
	Describe() string
}

// Mismatcher is implemented by matchers that can explain a rejection in more
// detail than Describe.
type Mismatcher interface {
	DescribeMismatch(actual any) string
}

// MatcherFunc builds a Matcher from a function and a description.
func MatcherFunc(description string, fn func(actual any) bool) Matcher {
	return &funcMatcher{desc: description, fn: fn}
}

type funcMatcher struct {
	desc string
	fn   func(any) bool
}

func (m *funcMatcher) Matches(actual any) bool { return m.fn(actual) }
func (m *funcMatcher) Describe() string        { return m.desc }

type equalTo struct {
	expected any
}

// EqualTo accepts values equal to expected. Numbers compare by value, lists
// and maps compare element by element.
func EqualTo(expected any) Matcher {
	return &equalTo{expected: expected}
}

func (m *equalTo) Matches(actual any) bool {
	return deepEqual(actual, m.expected)
}

func (m *equalTo) Describe() string {
	return formatValue(m.expected)
}

type notNull struct{}

func NotNull() Matcher {
	return notNull{}
}

func (notNull) Matches(actual any) bool { return !isNil(actual) }
func (notNull) Describe() string        { return "not null" }

type null struct{}

func Null() Matcher {
	return null{}
}

func (null) Matches(actual any) bool { return isNil(actual) }
func (null) Describe() string        { return "null" }

type not struct {
	inner Matcher
}

func Not(m Matcher) Matcher {
	return &not{inner: m}
}

func (m *not) Matches(actual any) bool { return !m.inner.Matches(actual) }
func (m *not) Describe() string        { return "not " + m.inner.Describe() }

type statusCode struct {
	code int
}

// StatusCodeEquals accepts a *http.Response with the given status, or a bare
// status number.
func StatusCodeEquals(code int) Matcher {
	return &statusCode{code: code}
}

func (m *statusCode) Matches(actual any) bool {
	got, ok := statusOf(actual)
	return ok && got == m.code
}

func (m *statusCode) Describe() string {
	return fmt.Sprintf("status code <%d>", m.code)
}

func (m *statusCode) DescribeMismatch(actual any) string {
	if got, ok := statusOf(actual); ok {
		return fmt.Sprintf("status code was <%d>", got)
	}
	return fmt.Sprintf("%s is not a response", formatValue(actual))
}

func statusOf(actual any) (int, bool) {
	switch v := actual.(type) {
	case *http.Response:
		if v == nil {
			return 0, false
		}
		return v.StatusCode, true
	case http.Response:
		return v.StatusCode, true
	}
	f, ok := toFloat64(actual)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

type ordering struct {
	bound any
	op    string
}

func GreaterThan(v any) Matcher    { return &ordering{bound: v, op: ">"} }
func GreaterOrEqual(v any) Matcher { return &ordering{bound: v, op: ">="} }
func LessThan(v any) Matcher       { return &ordering{bound: v, op: "<"} }
func LessOrEqual(v any) Matcher    { return &ordering{bound: v, op: "<="} }

func (m *ordering) Matches(actual any) bool {
	cmp, ok := compare(actual, m.bound)
	if !ok {
		return false
	}
	switch m.op {
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	}
	return false
}

func (m *ordering) Describe() string {
	names := map[string]string{
		">":  "greater than",
		">=": "greater than or equal to",
		"<":  "less than",
		"<=": "less than or equal to",
	}
	return fmt.Sprintf("a value %s %s", names[m.op], formatValue(m.bound))
}

// compare orders two numbers or two strings.
func compare(a, b any) (int, bool) {
	if af, ok := toFloat64(a); ok {
		bf, ok := toFloat64(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

type contains struct {
	item any
}

// Contains accepts a string holding the given substring, or a list holding an
// element equal to item.
func Contains(item any) Matcher {
	return &contains{item: item}
}

func (m *contains) Matches(actual any) bool {
	if s, ok := actual.(string); ok {
		sub, ok := m.item.(string)
		return ok && strings.Contains(s, sub)
	}
	rv := reflect.ValueOf(actual)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if deepEqual(rv.Index(i).Interface(), m.item) {
			return true
		}
	}
	return false
}

func (m *contains) Describe() string {
	return "containing " + formatValue(m.item)
}

type hasSize struct {
	size int
}

// HasSize accepts strings (counted in runes), lists and maps of the given length.
func HasSize(n int) Matcher {
	return &hasSize{size: n}
}

func (m *hasSize) Matches(actual any) bool {
	n, ok := sizeOf(actual)
	return ok && n == m.size
}

func (m *hasSize) Describe() string {
	return fmt.Sprintf("a value with size <%d>", m.size)
}

func (m *hasSize) DescribeMismatch(actual any) string {
	if n, ok := sizeOf(actual); ok {
		return fmt.Sprintf("size was <%d>", n)
	}
	return fmt.Sprintf("%s has no size", formatValue(actual))
}

func sizeOf(actual any) (int, bool) {
	if s, ok := actual.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(actual)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

type matchesRegex struct {
	pattern string
	re      *regexp.Regexp
	err     error
}

// MatchesRegex accepts strings matching pattern. Surrounding slashes, as in
// /^\d+$/, are stripped. An invalid pattern never matches.
func MatchesRegex(pattern string) Matcher {
	pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "/"), "/")
	re, err := regexp.Compile(pattern)
	return &matchesRegex{pattern: pattern, re: re, err: err}
}

func (m *matchesRegex) Matches(actual any) bool {
	s, ok := actual.(string)
	return ok && m.err == nil && m.re.MatchString(s)
}

func (m *matchesRegex) Describe() string {
	if m.err != nil {
		return fmt.Sprintf("a string matching /%s/ (invalid pattern: %v)", m.pattern, m.err)
	}
	return fmt.Sprintf("a string matching /%s/", m.pattern)
}

type hasKey struct {
	key string
}

// HasKey accepts maps with the given key.
func HasKey(key string) Matcher {
	return &hasKey{key: key}
}

func (m *hasKey) Matches(actual any) bool {
	rv := reflect.ValueOf(actual)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return false
	}
	return rv.MapIndex(reflect.ValueOf(m.key).Convert(rv.Type().Key())).IsValid()
}

func (m *hasKey) Describe() string {
	return fmt.Sprintf("a map with key %q", m.key)
}

type allOf struct {
	matchers []Matcher
}

func AllOf(matchers ...Matcher) Matcher {
	return &allOf{matchers: matchers}
}

func (m *allOf) Matches(actual any) bool {
	for _, inner := range m.matchers {
		if !inner.Matches(actual) {
			return false
		}
	}
	return true
}

func (m *allOf) Describe() string {
	return joinDescriptions(m.matchers, " and ")
}

func (m *allOf) DescribeMismatch(actual any) string {
	for _, inner := range m.matchers {
		if !inner.Matches(actual) {
			return "failed " + inner.Describe() + ": " + mismatch(inner, actual)
		}
	}
	return ""
}

type anyOf struct {
	matchers []Matcher
}

func AnyOf(matchers ...Matcher) Matcher {
	return &anyOf{matchers: matchers}
}

func (m *anyOf) Matches(actual any) bool {
	for _, inner := range m.matchers {
		if inner.Matches(actual) {
			return true
		}
	}
	return false
}

func (m *anyOf) Describe() string {
	return joinDescriptions(m.matchers, " or ")
}

func joinDescriptions(matchers []Matcher, sep string) string {
	parts := make([]string, len(matchers))
	for i, m := range matchers {
		parts[i] = "(" + m.Describe() + ")"
	}
	return strings.Join(parts, sep)
}

// mismatch explains why m rejected actual.
func mismatch(m Matcher, actual any) string {
	if mm, ok := m.(Mismatcher); ok {
		if s := mm.DescribeMismatch(actual); s != "" {
			return s
		}
	}
	return "was " + formatValue(actual)
}
