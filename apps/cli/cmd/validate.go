package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
	"github.com/abdul-hamid-achik/reqspec/packages/core/suite"
	"github.com/abdul-hamid-achik/reqspec/packages/spec"
	"github.com/spf13/cobra"
)

var validateConfigFlag string

var validateCmd = &cobra.Command{
	Use:   "validate <suite|directory>...",
	Short: "Check suite files without sending requests",
	Long: `Check suite files for YAML errors, unknown fields, missing methods or
paths, malformed matchers and references to specs that neither the config
file nor the suite defines.

Examples:
  reqspec validate users.yaml
  reqspec validate ./contracts --config contracts/.reqspec.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigFlag, "config", getEnvString("REQSPEC_CONFIG", ""), "Path to config file (env: REQSPEC_CONFIG)")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectSuites(args)
	if err != nil {
		return err
	}

	cfg, err := findConfig(validateConfigFlag, args)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}

	hasErrors := false
	for _, file := range files {
		if err := validateFile(cfg, file); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return &exitError{code: ExitParseError}
	}
	return nil
}

func validateFile(cfg *config.Config, file string) error {
	s, err := suite.LoadFile(file)
	if err != nil {
		return err
	}

	merged := cfg.Merge(&config.Config{Specs: s.Specs, ResponseSpecs: s.ResponseSpecs})
	if err := merged.Validate(); err != nil {
		return err
	}
	reg, err := spec.FromConfig(merged, spec.WithSchemaDir(s.Dir()))
	if err != nil {
		return err
	}
	return s.Validate(append(reg.Names(), reg.ResponseNames()...)...)
}
