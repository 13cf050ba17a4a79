package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/abdul-hamid-achik/reqspec/packages/core/runner"
	"github.com/abdul-hamid-achik/reqspec/packages/harness"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/abdul-hamid-achik/reqspec/packages/spec"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	callConfigFlag       string
	callSpecFlag         string
	callBodyFlag         string
	callHeaderFlags      []string
	callQueryFlags       []string
	callExpectStatusFlag int
	callResponseSpecFlag string
	callExtractFlags     []string
	callVerboseFlag      int
	callNoColorFlag      bool
)

var callCmd = &cobra.Command{
	Use:   "call METHOD PATH",
	Short: "Send a single request through a named spec",
	Long: `Send one request using a request spec from the config file and print
the response. PATH is joined to the spec's base URI and base path; an
absolute http(s) URL bypasses them.

With --extract only the extracted values are printed, one JSON value per
line, which makes the command usable in shell pipelines.

Examples:
  reqspec call GET /users/2 --spec reqres
  reqspec call POST /login --spec reqres --body '{"email":"eve.holt@reqres.in","password":"x"}' --extract token
  reqspec call GET https://reqres.in/api/users -q page=2 --expect-status 200
  reqspec call POST /users --body @user.json -H "Authorization: Bearer $TOKEN"`,
	Args: cobra.ExactArgs(2),
	RunE: callCommand,
}

func init() {
	callCmd.Flags().StringVar(&callConfigFlag, "config", getEnvString("REQSPEC_CONFIG", ""), "Path to config file (env: REQSPEC_CONFIG)")
	callCmd.Flags().StringVarP(&callSpecFlag, "spec", "s", getEnvString("REQSPEC_SPEC", ""), "Request spec to use (env: REQSPEC_SPEC)")
	callCmd.Flags().StringVarP(&callBodyFlag, "body", "b", "", "Request body: JSON, plain text or @file")
	callCmd.Flags().StringArrayVarP(&callHeaderFlags, "header", "H", nil, "Request header (\"Name: value\", repeatable)")
	callCmd.Flags().StringArrayVarP(&callQueryFlags, "query", "q", nil, "Query parameter (key=value, repeatable)")
	callCmd.Flags().IntVar(&callExpectStatusFlag, "expect-status", 0, "Fail unless the response has this status")
	callCmd.Flags().StringVar(&callResponseSpecFlag, "response-spec", "", "Fail unless the response satisfies this response spec")
	callCmd.Flags().StringArrayVarP(&callExtractFlags, "extract", "x", nil, "Print the value at a JSON path (repeatable)")
	callCmd.Flags().CountVarP(&callVerboseFlag, "verbose", "v", "Log the request and response (-vv adds bodies)")
	callCmd.Flags().BoolVar(&callNoColorFlag, "no-color", getEnvBool("REQSPEC_NO_COLOR", false), "Disable colored output (env: REQSPEC_NO_COLOR)")
}

func callCommand(cmd *cobra.Command, args []string) error {
	method, path := strings.ToUpper(args[0]), args[1]

	headers, err := parseHeaders(callHeaderFlags)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	cfg, err := findConfig(callConfigFlag, []string{"."})
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}
	if callNoColorFlag {
		color.NoColor = true
	}

	logger := newLogger(cmd, cfg, callVerboseFlag)

	var opts []spec.Option
	opts = append(opts, spec.WithLogger(logger))
	if callConfigFlag != "" {
		opts = append(opts, spec.WithSchemaDir(filepath.Dir(callConfigFlag)))
	}
	if callVerboseFlag > 0 {
		var logOpts []http.LogOption
		if callVerboseFlag > 1 {
			logOpts = append(logOpts, http.WithBody(true))
		}
		opts = append(opts, spec.WithFilters(
			http.NewRequestLoggingFilter(logger, logOpts...),
			http.NewResponseLoggingFilter(logger, logOpts...),
		))
	}
	reg, err := spec.FromConfig(cfg, opts...)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}

	reqSpec, err := pickSpec(reg, callSpecFlag)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}

	var respSpec *spec.ResponseSpec
	if callResponseSpecFlag != "" {
		rs, ok := reg.Response(callResponseSpecFlag)
		if !ok {
			return fmt.Errorf("%w: unknown response spec %q", errConfig, callResponseSpecFlag)
		}
		respSpec = &rs
	}

	body, err := parseBody(callBodyFlag)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := http.NewClient(runner.ClientOptions(cfg)...)
	req := harness.New(client, reqSpec).Given()
	for _, name := range sortedNames(headers) {
		req.Header(name, headers[name])
	}
	for k, v := range parseVars(callQueryFlags) {
		req.QueryParam(k, fmt.Sprint(v))
	}
	if body != nil {
		req.Body(body)
	}

	result := req.Send(ctx, method, path)
	validated := result.Validate()
	if callExpectStatusFlag > 0 {
		validated.StatusCode(callExpectStatusFlag)
	}
	if respSpec != nil {
		validated.Spec(*respSpec)
	}

	out := cmd.OutOrStdout()
	if len(callExtractFlags) == 0 && result.Response != nil {
		printResponse(out, result.Response)
	}

	extract := validated.Extract()
	for _, expr := range callExtractFlags {
		val, err := extract.Path(expr)
		if err != nil {
			break
		}
		encoded, _ := json.Marshal(val)
		fmt.Fprintln(out, string(encoded))
	}

	return validated.Err()
}

// pickSpec returns the named spec. With no name, a config holding exactly one
// spec uses it and an empty config falls back to absolute URLs only.
func pickSpec(reg *spec.Registry, name string) (http.RequestSpec, error) {
	names := reg.Names()
	if name == "" {
		switch len(names) {
		case 0:
			return http.NewRequestSpec(http.SpecOptions{}), nil
		case 1:
			name = names[0]
		default:
			return http.RequestSpec{}, fmt.Errorf("--spec is required, config defines %s", strings.Join(names, ", "))
		}
	}
	s, ok := reg.Request(name)
	if !ok {
		return http.RequestSpec{}, fmt.Errorf("unknown spec %q", name)
	}
	return s, nil
}

func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, h := range values {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// parseBody reads @file bodies and decodes JSON text; anything else is sent
// as a plain string.
func parseBody(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if strings.HasPrefix(raw, "@") {
		var err error
		data, err = os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
	}
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		return v, nil
	}
	return string(data), nil
}

func printResponse(w io.Writer, resp *http.Response) {
	status := color.New(color.FgGreen, color.Bold)
	if !resp.IsSuccess() {
		status = color.New(color.FgRed, color.Bold)
	}
	status.Fprintf(w, "%s\n", resp.Status)

	dim := color.New(color.FgHiBlack)
	for _, h := range resp.Headers {
		dim.Fprintf(w, "%s: %s\n", h.Name, h.Value)
	}
	if len(resp.Body) == 0 {
		return
	}
	fmt.Fprintln(w)

	var pretty bytes.Buffer
	if resp.IsJSON() && json.Indent(&pretty, resp.Body, "", "  ") == nil {
		fmt.Fprintln(w, pretty.String())
		return
	}
	fmt.Fprintln(w, resp.BodyString())
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
