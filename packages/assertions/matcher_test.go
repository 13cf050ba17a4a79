package assertions

import (
	"encoding/json"
	"testing"

	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/stretchr/testify/assert"
)

func TestMatchers(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		actual  any
		want    bool
	}{
		{"equal int vs int64", EqualTo(2), int64(2), true},
		{"equal int vs float64", EqualTo(12), float64(12), true},
		{"equal float mismatch", EqualTo(2), 2.5, false},
		{"equal json.Number", EqualTo(6), json.Number("6"), true},
		{"equal strings", EqualTo("Janet"), "Janet", true},
		{"equal strings case", EqualTo("Janet"), "janet", false},
		{"string is not number", EqualTo("2"), 2, false},
		{"equal bool", EqualTo(true), true, true},
		{"equal nil", EqualTo(nil), nil, true},
		{"nil vs value", EqualTo(nil), "x", false},
		{"equal lists coerced", EqualTo([]int{7, 8}), []any{int64(7), int64(8)}, true},
		{"list order matters", EqualTo([]int{8, 7}), []any{int64(7), int64(8)}, false},
		{"equal maps coerced", EqualTo(map[string]any{"id": 2}), map[string]any{"id": int64(2)}, true},
		{"map missing key", EqualTo(map[string]any{"id": 2}), map[string]any{"ID": int64(2)}, false},
		{"not null value", NotNull(), "QpwL5tke4Pnpja7X4", true},
		{"not null nil", NotNull(), nil, false},
		{"not null typed nil", NotNull(), map[string]any(nil), false},
		{"null", Null(), nil, true},
		{"not", Not(EqualTo(1)), 2, true},
		{"greater than", GreaterThan(1), int64(2), true},
		{"greater than equal", GreaterThan(2), 2.0, false},
		{"greater or equal", GreaterOrEqual(2), 2, true},
		{"less than", LessThan(10), 9.5, true},
		{"less or equal", LessOrEqual(10), int64(11), false},
		{"ordering strings", LessThan("b"), "a", true},
		{"ordering mixed", GreaterThan(1), "2", false},
		{"contains substring", Contains("reqres"), "eve.holt@reqres.in", true},
		{"contains list", Contains(7), []any{int64(7), int64(8)}, true},
		{"contains list miss", Contains(9), []any{int64(7), int64(8)}, false},
		{"contains on number", Contains("1"), 1, false},
		{"size list", HasSize(6), make([]any, 6), true},
		{"size map", HasSize(2), map[string]any{"a": 1, "b": 2}, true},
		{"size string runes", HasSize(3), "héé", true},
		{"size of number", HasSize(1), 1, false},
		{"regex", MatchesRegex(`^\d{4}-\d{2}`), "2024-01-02T10:00:00Z", true},
		{"regex slashes", MatchesRegex(`/^morph/`), "morpheus", true},
		{"regex non-string", MatchesRegex(`\d+`), 12, false},
		{"regex invalid", MatchesRegex(`(`), "(", false},
		{"has key", HasKey("token"), map[string]any{"token": "x"}, true},
		{"has key miss", HasKey("token"), map[string]any{"error": "x"}, false},
		{"has key non-map", HasKey("token"), []any{}, false},
		{"all of", AllOf(NotNull(), GreaterThan(0)), 3, true},
		{"all of fails", AllOf(NotNull(), GreaterThan(5)), 3, false},
		{"any of", AnyOf(EqualTo(1), EqualTo(3)), 3, true},
		{"any of none", AnyOf(EqualTo(1), EqualTo(2)), 3, false},
		{"status response", StatusCodeEquals(204), &http.Response{StatusCode: 204}, true},
		{"status response mismatch", StatusCodeEquals(200), &http.Response{StatusCode: 404}, false},
		{"status bare int", StatusCodeEquals(200), 200, true},
		{"status nil response", StatusCodeEquals(200), (*http.Response)(nil), false},
		{"status string", StatusCodeEquals(200), "200", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Matches(tt.actual))
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		matcher Matcher
		want    string
	}{
		{EqualTo(2), "<2>"},
		{EqualTo("Janet"), `"Janet"`},
		{EqualTo([]int{1, 2}), "[1,2]"},
		{EqualTo(nil), "null"},
		{NotNull(), "not null"},
		{Not(Null()), "not null"},
		{StatusCodeEquals(201), "status code <201>"},
		{GreaterThan(3), "a value greater than <3>"},
		{LessOrEqual(3), "a value less than or equal to <3>"},
		{Contains("x"), `containing "x"`},
		{HasSize(6), "a value with size <6>"},
		{MatchesRegex("^a$"), "a string matching /^a$/"},
		{HasKey("id"), `a map with key "id"`},
		{AllOf(NotNull(), EqualTo(1)), "(not null) and (<1>)"},
		{AnyOf(EqualTo(1), EqualTo(2)), "(<1>) or (<2>)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Describe())
		})
	}
}

func TestMatcherFunc(t *testing.T) {
	even := MatcherFunc("an even number", func(v any) bool {
		n, ok := toFloat64(v)
		return ok && int(n)%2 == 0
	})
	assert.True(t, even.Matches(4))
	assert.False(t, even.Matches(3))
	assert.Equal(t, "an even number", even.Describe())
}
