package assertions

import (
	"errors"
	"fmt"
)

// AssertionFailure reports a value rejected by a matcher.
type AssertionFailure struct {
	Reason   string
	Expected string
	Actual   any
	Mismatch string
}

func (f *AssertionFailure) Error() string {
	msg := fmt.Sprintf("expected %s but %s", f.Expected, f.Mismatch)
	if f.Mismatch == "" {
		msg = fmt.Sprintf("expected %s but was %s", f.Expected, formatValue(f.Actual))
	}
	if f.Reason != "" {
		return f.Reason + ": " + msg
	}
	return msg
}

// IsAssertionFailure reports whether err is or wraps an *AssertionFailure.
func IsAssertionFailure(err error) bool {
	var af *AssertionFailure
	return errors.As(err, &af)
}

// Expect returns nil when m accepts actual and an *AssertionFailure otherwise.
func Expect(actual any, m Matcher) error {
	return ExpectWithReason("", actual, m)
}

func ExpectWithReason(reason string, actual any, m Matcher) error {
	if m.Matches(actual) {
		return nil
	}
	return &AssertionFailure{
		Reason:   reason,
		Expected: m.Describe(),
		Actual:   actual,
		Mismatch: mismatch(m, actual),
	}
}

// ExpectPresence checks whether a value was found at path. actual is only
// reported when a value was found but none was wanted.
func ExpectPresence(path string, found, want bool, actual any) error {
	if found == want {
		return nil
	}
	if want {
		return &AssertionFailure{Reason: path, Expected: "a value", Mismatch: "the path was not found"}
	}
	return &AssertionFailure{Reason: path, Expected: "no value", Actual: actual}
}

// TestingT is the subset of *testing.T used by That.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

// That fails and stops the test when m rejects actual.
func That(t TestingT, actual any, m Matcher) {
	t.Helper()
	if err := Expect(actual, m); err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
}

// ThatWithReason is That with a prefix naming what was checked.
func ThatWithReason(t TestingT, reason string, actual any, m Matcher) {
	t.Helper()
	if err := ExpectWithReason(reason, actual, m); err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
}
