package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
	"github.com/abdul-hamid-achik/reqspec/packages/core/env"
	"github.com/abdul-hamid-achik/reqspec/packages/core/runner"
	"github.com/abdul-hamid-achik/reqspec/packages/core/suite"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/abdul-hamid-achik/reqspec/packages/logging"
	"github.com/abdul-hamid-achik/reqspec/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <suite|directory>...",
	Short: "Run contract suites",
	Long: `Run the contract suites in the given YAML files or directories.

Directories are searched recursively; hidden files and stub route tables
(routes.yaml, *.routes.yaml) are skipped. The config file is looked up next
to the first suite, then in the working directory.

Examples:
  reqspec run examples/reqres
  reqspec run users.yaml --name "login*" -v
  reqspec run ./contracts --parallel --concurrency 10
  reqspec run ./contracts -o junit --output-file report.xml
  reqspec run users.yaml --var userId=7 --env-file .env.local`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag      string
	envFileFlag     string
	nameFlag        string
	varFlags        []string
	verboseFlag     int // 0=off, 1=-v, 2=-vv, 3=-vvv
	bailFlag        bool
	timeoutFlag     string
	rateFlag        float64
	noColorFlag     bool
	outputFlag      string
	outputFileFlag  string
	parallelFlag    bool
	concurrencyFlag int
	watchFlag       bool
	proxyFlag       string
	insecureFlag    bool
)

func init() {
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("REQSPEC_CONFIG", ""), "Path to config file (env: REQSPEC_CONFIG)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("REQSPEC_ENV_FILE", ""), "Path to .env file exported before the config is read (env: REQSPEC_ENV_FILE)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only cases matching name pattern (* wildcards)")
	runCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Set a suite variable (key=value, repeatable)")

	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v logs requests, -vv adds bodies, -vvv adds curl)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("REQSPEC_NO_COLOR", false), "Disable colored output (env: REQSPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("REQSPEC_OUTPUT", "console"), "Output format: "+strings.Join(output.Formats, ", ")+" (env: REQSPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("REQSPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: REQSPEC_OUTPUT_FILE)")

	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("REQSPEC_BAIL", false), "Stop on first failure (env: REQSPEC_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("REQSPEC_TIMEOUT", ""), "Request timeout, e.g. 5s or 500ms (env: REQSPEC_TIMEOUT)")
	runCmd.Flags().Float64Var(&rateFlag, "rate", getEnvFloat("REQSPEC_RATE", 0), "Maximum requests per second, 0 for unlimited (env: REQSPEC_RATE)")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("REQSPEC_PARALLEL", false), "Run cases in parallel (env: REQSPEC_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("REQSPEC_CONCURRENCY", 0), "Number of concurrent cases when running in parallel (env: REQSPEC_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run suites")

	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("REQSPEC_PROXY", ""), "Proxy URL for HTTP requests (env: REQSPEC_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("REQSPEC_INSECURE", false), "Disable SSL certificate validation (env: REQSPEC_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func runCommand(cmd *cobra.Command, args []string) error {
	if _, err := output.New(outputFlag, io.Discard, false, true); err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	files, err := collectSuites(args)
	if err != nil {
		return err
	}

	cfg, err := loadRunConfig(args)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg, verboseFlag)
	r := runner.NewRunner(cfg, runnerOptions(logger)...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome := runOnce(ctx, cmd, r, files)
	if !watchFlag {
		return outcome
	}

	return watch(ctx, cmd, args, logger)
}

func collectSuites(args []string) ([]string, error) {
	files, err := suite.FindFiles(args)
	if err != nil {
		return nil, &exitError{code: ExitUsageError, err: err}
	}
	if len(files) == 0 {
		return nil, &exitError{code: ExitUsageError, err: fmt.Errorf("no suite files found in %s", strings.Join(args, ", "))}
	}
	return files, nil
}

// loadRunConfig reads the config file and applies flag overrides.
func loadRunConfig(args []string) (*config.Config, error) {
	if envFileFlag != "" {
		if _, err := env.LoadAndExportDotEnv(envFileFlag); err != nil {
			return nil, fmt.Errorf("%w: %w", errConfig, err)
		}
	}

	cfg, err := findConfig(configFlag, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}

	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", errConfig, timeoutFlag, err)
		}
		cfg.Timeout = int(timeout.Milliseconds())
	}
	if rateFlag > 0 {
		cfg.RateLimit = rateFlag
	}
	if proxyFlag != "" {
		cfg.Proxy = proxyFlag
	}
	if insecureFlag {
		cfg.ValidateSSL = config.BoolPtr(false)
	}
	if bailFlag {
		cfg.Bail = config.BoolPtr(true)
	}
	if parallelFlag {
		cfg.Parallel = config.BoolPtr(true)
	}
	if concurrencyFlag > 0 {
		cfg.Concurrency = concurrencyFlag
	}
	if noColorFlag {
		cfg.NoColor = config.BoolPtr(true)
	}
	if verboseFlag > 0 {
		cfg.Verbose = config.BoolPtr(true)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	return cfg, nil
}

// findConfig loads path when set, otherwise looks next to each argument and
// then in the working directory.
func findConfig(path string, args []string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	seen := make(map[string]bool)
	for _, arg := range args {
		dir := arg
		if info, err := os.Stat(arg); err != nil || !info.IsDir() {
			dir = filepath.Dir(arg)
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true
		cfg, err := config.FindAndLoadConfig(dir)
		if err != nil {
			return nil, err
		}
		if !cfg.IsDefault() {
			return cfg, nil
		}
	}
	return config.LoadConfig("")
}

func newLogger(cmd *cobra.Command, cfg *config.Config, verbose int) zerolog.Logger {
	level := "warn"
	if verbose > 0 {
		level = logging.VerbosityLevel(verbose)
	} else if cfg.LogLevel != "" && cfg.LogLevel != config.DefaultConfig().LogLevel {
		level = cfg.LogLevel
	}
	return logging.New(logging.Options{
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
		Console: true,
		NoColor: cfg.GetNoColor(),
	})
}

func runnerOptions(logger zerolog.Logger) []runner.Option {
	opts := []runner.Option{runner.WithLogger(logger)}
	if nameFlag != "" {
		opts = append(opts, runner.WithNameFilter(nameFlag))
	}
	if vars := parseVars(varFlags); len(vars) > 0 {
		opts = append(opts, runner.WithVariables(vars))
	}
	if verboseFlag > 0 {
		var logOpts []http.LogOption
		if verboseFlag > 1 {
			logOpts = append(logOpts, http.WithBody(true))
		}
		if verboseFlag > 2 {
			logOpts = append(logOpts, http.WithCurl(true))
		}
		opts = append(opts, runner.WithFilters(
			http.NewRequestLoggingFilter(logger, logOpts...),
			http.NewResponseLoggingFilter(logger, logOpts...),
		))
	}
	return opts
}

// parseVars turns key=value pairs into suite variables. Entries without "="
// set the key to an empty string.
func parseVars(pairs []string) map[string]any {
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = value
	}
	return vars
}

// runOnce runs every file and reports through a fresh formatter. The returned
// error only carries an exit code; results and errors are already printed.
func runOnce(ctx context.Context, cmd *cobra.Command, r *runner.Runner, files []string) error {
	w := cmd.OutOrStdout()
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	formatter, err := output.New(outputFlag, w, verboseFlag > 0, noColorFlag)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}
	formatter.FormatHeader(version)

	start := time.Now()
	code := ExitSuccess
	for _, file := range files {
		result, err := r.RunFile(ctx, file)
		if err != nil {
			formatter.FormatError(err)
			if code == ExitSuccess {
				code = exitCode(err)
			}
			if bailFlag {
				break
			}
			continue
		}

		formatter.FormatResult(result)
		if result.Failed > 0 && code == ExitSuccess {
			code = failureCode(result)
		}
		if bailFlag && result.Failed > 0 {
			break
		}
	}

	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(time.Since(start)); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	if code != ExitSuccess {
		return &exitError{code: code}
	}
	return nil
}

// failureCode is ExitNetworkError when every failed case failed in transport.
func failureCode(result *runner.RunResult) int {
	for _, c := range result.Results {
		if !c.Passed && !c.Skipped && !http.IsTransportError(c.Error) {
			return ExitTestFailure
		}
	}
	return ExitNetworkError
}

func watch(ctx context.Context, cmd *cobra.Command, args []string, logger zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, arg := range args {
		root := arg
		if info, err := os.Stat(arg); err != nil || !info.IsDir() {
			root = filepath.Dir(arg)
		}
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && !watchedDirs[path] {
				if err := watcher.Add(path); err != nil {
					logger.Warn().Err(err).Str("dir", path).Msg("cannot watch directory")
				}
				watchedDirs[path] = true
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var (
		debounce <-chan time.Time
		changed  string
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write|fsnotify.Create) && isWatchedFile(event.Name) {
				changed = event.Name
				debounce = time.After(WatchDebounceDelay)
			}

		case <-debounce:
			debounce = nil
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running suites...\n\n", changed)

			files, err := collectSuites(args)
			if err != nil {
				logger.Error().Err(err).Msg("collecting suites")
				continue
			}
			cfg, err := loadRunConfig(args)
			if err != nil {
				logger.Error().Err(err).Msg("reloading config")
				continue
			}
			_ = runOnce(ctx, cmd, runner.NewRunner(cfg, runnerOptions(logger)...), files)

			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func isWatchedFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
