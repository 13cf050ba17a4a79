package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/core/runner"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "junit", "tap"}

// New returns the formatter registered under name, writing to w.
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(Formats, ", "))
}

// failures returns the failure messages of a case, one per failed assertion.
func failures(r *runner.CaseResult) []string {
	var out []string
	for _, a := range r.Assertions {
		if !a.Passed {
			out = append(out, a.Message())
		}
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
