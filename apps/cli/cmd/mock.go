package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/logging"
	"github.com/abdul-hamid-achik/reqspec/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag    int
	mockDelayFlag   time.Duration
	mockVerboseFlag bool
	mockNoColorFlag bool
)

var mockCmd = &cobra.Command{
	Use:   "mock <routes.yaml>...",
	Short: "Start a stub server from route tables",
	Long: `Start an HTTP stub server that answers from YAML route tables.

Routes match on method and a path pattern with {param} placeholders, and
may require query values, headers or body fields. The first matching route
wins. Reply bodies may use {{param}}, {{query.name}}, {{body.path}} and the
template functions such as {{uuid()}} and {{now()}}.

Examples:
  reqspec mock examples/reqres/routes.yaml
  reqspec mock routes.yaml --port 8080 --delay 100ms
  reqspec mock users.routes.yaml orders.routes.yaml --verbose`,
	Args: cobra.MinimumNArgs(1),
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", getEnvInt("REQSPEC_MOCK_PORT", 3000), "Port to run the stub server on (env: REQSPEC_MOCK_PORT)")
	mockCmd.Flags().DurationVarP(&mockDelayFlag, "delay", "d", 0, "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Log every request")
	mockCmd.Flags().BoolVar(&mockNoColorFlag, "no-color", getEnvBool("REQSPEC_NO_COLOR", false), "Disable colored log output (env: REQSPEC_NO_COLOR)")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	level := "info"
	if mockVerboseFlag {
		level = "debug"
	}
	logger := logging.New(logging.Options{
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
		Console: true,
		NoColor: mockNoColorFlag,
	})

	server := mock.NewServer(
		mock.WithPort(mockPortFlag),
		mock.WithDelay(mockDelayFlag),
		mock.WithLogger(logger),
	)
	if err := server.LoadFiles(args); err != nil {
		return &exitError{code: ExitParseError, err: err}
	}

	routes := server.Routes()
	if len(routes) == 0 {
		return &exitError{code: ExitUsageError, err: fmt.Errorf("no routes found in %d files", len(args))}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d routes from %d files\n", len(routes), len(args))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.StartWithContext(ctx)
}
