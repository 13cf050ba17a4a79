package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/core/runner"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/abdul-hamid-achik/reqspec/packages/stats"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Suites   []JSONSuite `json:"suites"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type JSONSuite struct {
	Name     string          `json:"name"`
	File     string          `json:"file,omitempty"`
	Duration float64         `json:"duration"`
	Latency  stats.Summary   `json:"latency"`
	Routes   []stats.Summary `json:"routes,omitempty"`
	Tests    []JSONTest      `json:"tests"`
}

type JSONTest struct {
	Name       string          `json:"name"`
	Spec       string          `json:"spec,omitempty"`
	Passed     bool            `json:"passed"`
	Skipped    bool            `json:"skipped,omitempty"`
	SkipReason string          `json:"skipReason,omitempty"`
	Duration   float64         `json:"duration"`
	Error      string          `json:"error,omitempty"`
	Request    *JSONRequest    `json:"request,omitempty"`
	Response   *JSONResponse   `json:"response,omitempty"`
	Assertions []JSONAssertion `json:"assertions,omitempty"`
	Extracted  map[string]any  `json:"extracted,omitempty"`
}

type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	RequestID  string            `json:"requestId,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Duration   float64           `json:"duration"`
}

type JSONAssertion struct {
	Description string `json:"description"`
	Passed      bool   `json:"passed"`
	Message     string `json:"message,omitempty"`
}

// JSONFormatter collects every suite and writes one document on Flush.
type JSONFormatter struct {
	writer io.Writer
	suites []JSONSuite
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		suites: make([]JSONSuite, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	suite := JSONSuite{
		Name:     result.Suite,
		File:     result.File,
		Duration: millis(result.Duration),
		Latency:  result.Latency,
		Routes:   result.Routes,
		Tests:    make([]JSONTest, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		test := JSONTest{
			Name:     r.Name,
			Spec:     r.Spec,
			Passed:   r.Passed,
			Skipped:  r.Skipped,
			Duration: millis(r.Duration),
		}
		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			test.SkipReason = r.SkipReason
		}
		if r.Error != nil {
			test.Error = r.Error.Error()
		}

		if r.Request != nil && r.Request.URL != "" {
			test.Request = &JSONRequest{
				Method:  r.Request.Method,
				URL:     r.Request.URL,
				Headers: http.RedactHeaders(r.Request.Headers),
			}
		}
		if r.Response != nil {
			test.Response = &JSONResponse{
				StatusCode: r.Response.StatusCode,
				Status:     r.Response.Status,
				RequestID:  r.Response.RequestID,
				Headers:    http.RedactHeaders(r.Response.HeaderMap()),
				Duration:   millis(r.Response.Duration),
			}
		}

		for _, a := range r.Assertions {
			test.Assertions = append(test.Assertions, JSONAssertion{
				Description: a.Description,
				Passed:      a.Passed,
				Message:     a.Message(),
			})
		}

		if len(r.Extracted) > 0 {
			test.Extracted = r.Extracted
		}
		suite.Tests = append(suite.Tests, test)
	}

	f.suites = append(f.suites, suite)
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual test results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var summary JSONSummary
	for _, s := range f.suites {
		for _, t := range s.Tests {
			summary.Total++
			switch {
			case t.Skipped:
				summary.Skipped++
			case t.Passed:
				summary.Passed++
			default:
				summary.Failed++
			}
		}
	}

	output := JSONOutput{
		Summary:  summary,
		Suites:   f.suites,
		Duration: millis(totalDuration),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
