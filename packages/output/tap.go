package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/core/runner"
)

// TAPFormatter formats test results in TAP (Test Anything Protocol) format
type TAPFormatter struct {
	writer  io.Writer
	results []tapResult
}

type tapResult struct {
	name     string
	passed   bool
	skip     string
	error    string
	failures []string
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		tr := tapResult{
			name:   result.Suite + ": " + r.Name,
			passed: r.Passed,
		}
		if r.Skipped {
			tr.skip = r.SkipReason
			if tr.skip == "" {
				tr.skip = "skipped"
			}
		}
		if r.Error != nil {
			tr.error = r.Error.Error()
		}
		tr.failures = failures(r)
		f.results = append(f.results, tr)
	}
}

func (f *TAPFormatter) FormatError(err error) {
	// Errors are included in individual test results
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written in Flush
}

// Flush writes the plan and every result.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	var b strings.Builder
	b.WriteString("TAP version 13\n")
	fmt.Fprintf(&b, "1..%d\n", len(f.results))

	for i, r := range f.results {
		n := i + 1
		switch {
		case r.skip != "":
			fmt.Fprintf(&b, "ok %d - %s # SKIP %s\n", n, r.name, r.skip)
		case r.error != "":
			fmt.Fprintf(&b, "not ok %d - %s\n", n, r.name)
			b.WriteString("  ---\n")
			fmt.Fprintf(&b, "  message: %s\n", escapeYAML(r.error))
			b.WriteString("  severity: error\n")
			b.WriteString("  ...\n")
		case r.passed:
			fmt.Fprintf(&b, "ok %d - %s\n", n, r.name)
		default:
			fmt.Fprintf(&b, "not ok %d - %s\n", n, r.name)
			if len(r.failures) > 0 {
				b.WriteString("  ---\n  failures:\n")
				for _, msg := range r.failures {
					fmt.Fprintf(&b, "    - %s\n", escapeYAML(msg))
				}
				b.WriteString("  ...\n")
			}
		}
	}
	fmt.Fprintf(&b, "# time %dms\n", totalDuration.Milliseconds())

	_, err := io.WriteString(f.writer, b.String())
	return err
}

// escapeYAML quotes s when it holds characters YAML would interpret.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", `\n`)
		return "\"" + s + "\""
	}
	return s
}
