package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/reqspec/packages/core/runner"
	"github.com/fatih/color"
)

const maxValueLen = 100

// ConsoleFormatter prints a human readable report as results arrive.
type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool

	pass, fail, skip, info, title *color.Color
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
		pass:   color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
		skip:   color.New(color.FgYellow),
		info:   color.New(color.FgCyan),
		title:  color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		for _, c := range []*color.Color{f.pass, f.fail, f.skip, f.info, f.title} {
			c.DisableColor()
		}
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithVerbose adds request lines, request ids, extracted values and the
// per-route latency table.
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	heading := "Suite: " + result.Suite
	if result.File != "" {
		heading += " (" + result.File + ")"
	}
	fmt.Fprintf(f.writer, "\n%s\n\n", f.title.Sprint(heading))

	for _, r := range result.Results {
		f.writeCase(r)
	}

	f.writeTotals(result)
	fmt.Fprintln(f.writer)
}

func (f *ConsoleFormatter) writeCase(r *runner.CaseResult) {
	switch {
	case r.Skipped:
		line := fmt.Sprintf("  %s %s", f.skip.Sprint("-"), r.Name)
		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			line += " (" + r.SkipReason + ")"
		}
		fmt.Fprintln(f.writer, line)
		return
	case r.Error != nil:
		fmt.Fprintf(f.writer, "  %s %s %s\n", f.fail.Sprint("x"), r.Name, f.fail.Sprintf("(%v)", r.Error))
		return
	}

	mark := f.pass.Sprint("✓")
	if !r.Passed {
		mark = f.fail.Sprint("✗")
	}
	fmt.Fprintf(f.writer, "  %s %s %s\n", mark, r.Name, f.info.Sprintf("(%dms)", r.Duration.Milliseconds()))

	if f.verbose && r.Request != nil && r.Response != nil {
		fmt.Fprintf(f.writer, "    %s %s -> %d\n", r.Request.Method, r.Request.URL, r.Response.StatusCode)
		if r.Response.RequestID != "" {
			fmt.Fprintf(f.writer, "    Request ID: %s\n", r.Response.RequestID)
		}
	}

	for _, a := range r.Assertions {
		if a.Passed {
			continue
		}
		fmt.Fprintf(f.writer, "    %s %s\n", f.fail.Sprint("→"), a.Description)
		fmt.Fprintf(f.writer, "      %s\n", a.Message())
	}

	if f.verbose && len(r.Extracted) > 0 {
		fmt.Fprintln(f.writer, "    Extracted:")
		for _, name := range sortedNames(r.Extracted) {
			fmt.Fprintf(f.writer, "      %s = %s\n", name, summarize(r.Extracted[name]))
		}
	}
}

func (f *ConsoleFormatter) writeTotals(result *runner.RunResult) {
	var parts []string
	if result.Passed > 0 {
		parts = append(parts, f.pass.Sprintf("%d passed", result.Passed))
	}
	if result.Failed > 0 {
		parts = append(parts, f.fail.Sprintf("%d failed", result.Failed))
	}
	if result.Skipped > 0 {
		parts = append(parts, f.skip.Sprintf("%d skipped", result.Skipped))
	}
	parts = append(parts, fmt.Sprintf("%d total", result.Passed+result.Failed+result.Skipped))

	fmt.Fprintf(f.writer, "\nTests: %s\n", strings.Join(parts, ", "))
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())

	lat := result.Latency
	if lat.Total == 0 {
		return
	}
	fmt.Fprintf(f.writer, "Latency: p50 %.1fms  p95 %.1fms  p99 %.1fms  max %.1fms\n",
		millis(lat.P50), millis(lat.P95), millis(lat.P99), millis(lat.Max))
	if !f.verbose {
		return
	}
	for _, route := range result.Routes {
		fmt.Fprintf(f.writer, "  %-40s %3d req  p95 %.1fms\n", route.Name, route.Total, millis(route.P95))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	fmt.Fprintf(f.writer, "%s %v\n", f.fail.Sprint("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	fmt.Fprintf(f.writer, "%s %s\n", f.title.Sprint("reqspec"), version)
}

// summarize shortens collections to their size and long scalars to
// maxValueLen characters.
func summarize(v any) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	s := fmt.Sprintf("%v", v)
	if len(s) > maxValueLen {
		return s[:maxValueLen] + "..."
	}
	return s
}
