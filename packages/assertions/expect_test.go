package assertions

import (
	"errors"
	"fmt"
	"testing"

	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeT struct {
	helper  bool
	errors  []string
	stopped bool
}

func (f *fakeT) Helper() { f.helper = true }

func (f *fakeT) Errorf(format string, args ...any) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeT) FailNow() { f.stopped = true }

func TestExpect(t *testing.T) {
	assert.NoError(t, Expect(int64(2), EqualTo(2)))

	err := Expect(int64(3), EqualTo(2))
	require.Error(t, err)

	var failure *AssertionFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "<2>", failure.Expected)
	assert.Equal(t, int64(3), failure.Actual)
	assert.Equal(t, "expected <2> but was <3>", err.Error())
	assert.True(t, IsAssertionFailure(fmt.Errorf("case 1: %w", err)))
}

func TestExpectWithReason(t *testing.T) {
	err := ExpectWithReason("data.first_name", "Emma", EqualTo("Janet"))
	require.Error(t, err)
	assert.Equal(t, `data.first_name: expected "Janet" but was "Emma"`, err.Error())
}

func TestExpect_MismatchDetail(t *testing.T) {
	err := Expect(&http.Response{StatusCode: 404}, StatusCodeEquals(200))
	require.Error(t, err)
	assert.Equal(t, "expected status code <200> but status code was <404>", err.Error())

	err = Expect([]any{1, 2}, HasSize(6))
	require.Error(t, err)
	assert.Equal(t, "expected a value with size <6> but size was <2>", err.Error())

	err = Expect(3, AllOf(NotNull(), GreaterThan(5)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed a value greater than <5>: was <3>")
}

func TestExpectPresence(t *testing.T) {
	assert.NoError(t, ExpectPresence("token", false, false, nil))
	assert.NoError(t, ExpectPresence("token", true, true, "abc"))

	err := ExpectPresence("token", true, false, nil)
	require.Error(t, err)
	assert.True(t, IsAssertionFailure(err))
	assert.Equal(t, "token: expected no value but was null", err.Error())

	err = ExpectPresence("data.id", false, true, nil)
	assert.Equal(t, "data.id: expected a value but the path was not found", err.Error())
}

func TestThat_PassDoesNotTouchT(t *testing.T) {
	ft := &fakeT{}
	That(ft, "QpwL5tke4Pnpja7X4", NotNull())

	assert.True(t, ft.helper)
	assert.Empty(t, ft.errors)
	assert.False(t, ft.stopped)
}

func TestThat_FailureAlwaysFailsTest(t *testing.T) {
	ft := &fakeT{}
	That(ft, nil, NotNull())

	require.Len(t, ft.errors, 1)
	assert.Equal(t, "expected not null but was null", ft.errors[0])
	assert.True(t, ft.stopped)
}

func TestThatWithReason(t *testing.T) {
	ft := &fakeT{}
	ThatWithReason(ft, "token", nil, NotNull())

	require.Len(t, ft.errors, 1)
	assert.Equal(t, "token: expected not null but was null", ft.errors[0])
	assert.True(t, ft.stopped)
}
