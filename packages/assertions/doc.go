// Package assertions checks values with composable matchers.
//
// A Matcher decides whether a value is acceptable and describes what it
// expects. Expect returns an *AssertionFailure for a rejected value; That
// reports it to a test and stops it.
//
//	assertions.That(t, body["id"], assertions.EqualTo(2))
//	assertions.That(t, resp, assertions.StatusCodeEquals(204))
//
// EqualTo compares numbers by value across Go numeric types, so the int64
// produced by a JSON path matches an int literal.
package assertions
