package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/reqspec/packages/core/runner"
	"github.com/abdul-hamid-achik/reqspec/packages/core/suite"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
)

// Exit codes for reqspec CLI
const (
	// ExitSuccess indicates all tests passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more tests failed
	ExitTestFailure = 1

	// ExitParseError indicates a suite, route or path expression could not be parsed
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// errConfig marks failures while loading or applying configuration.
var errConfig = errors.New("config error")

// exitError carries an explicit exit code. A nil err means the command has
// already reported the problem.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// testsFailed is returned by commands whose results were already printed.
func testsFailed() error {
	return &exitError{code: ExitTestFailure}
}

func exitCode(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, errConfig):
		return ExitConfigError
	case errors.Is(err, suite.ErrParse), errors.Is(err, runner.ErrInvalidSuite), errors.Is(err, jsonpath.ErrSyntax):
		return ExitParseError
	case http.IsTransportError(err):
		return ExitNetworkError
	}
	return ExitTestFailure
}
