package runner

import (
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/abdul-hamid-achik/reqspec/packages/stats"
)

type RunResult struct {
	Suite    string
	File     string
	Results  []*CaseResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int

	// Latency covers every response received during the run; Routes breaks
	// it down by method and path.
	Latency stats.Summary
	Routes  []stats.Summary
}

func (r *RunResult) OK() bool {
	return r.Failed == 0
}

type CaseResult struct {
	Name       string
	Spec       string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Request    *http.Request
	Response   *http.Response
	Assertions []*AssertionResult
	Extracted  map[string]any
	Error      error
}

// AssertionResult is the outcome of one expectation. Err is nil when it passed.
type AssertionResult struct {
	Description string
	Passed      bool
	Err         error
}

// Message is the failure text, or "" when the assertion passed.
func (a *AssertionResult) Message() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

func (r *RunResult) tally(c *CaseResult) {
	r.Results = append(r.Results, c)
	switch {
	case c.Skipped:
		r.Skipped++
	case c.Passed:
		r.Passed++
	default:
		r.Failed++
	}
}
