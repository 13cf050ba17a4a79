package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new reqspec project",
	Long: `Initialize a new reqspec project in the given directory (default: current).

This creates:
  - .reqspec.yaml  - Configuration file with a request spec and a response spec
  - example.yaml   - Example contract suite

Examples:
  reqspec init
  reqspec init contracts --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleSuite = `name: example
spec: api

variables:
  userId: 1

cases:
  - name: get user
    method: GET
    path: /users/{{userId}}
    expect:
      responseSpec: ok-json
      body:
        - path: id
          equalTo: 1
        - path: email
          matches: "^.+@.+$"
    extract:
      userEmail: email

  - name: create post
    method: POST
    path: /posts
    body:
      title: hello
      userId: "{{userId}}"
    expect:
      status: 201
      body:
        - path: id
          notNull: true
`

func initCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	configFile := filepath.Join(dir, ".reqspec.yaml")
	exampleFile := filepath.Join(dir, "example.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return &exitError{code: ExitUsageError, err: fmt.Errorf("file already exists: %s (use --force to overwrite)", f)}
			}
		}
	}

	cfg := &config.Config{
		Timeout:         10000,
		FollowRedirects: config.BoolPtr(true),
		ValidateSSL:     config.BoolPtr(true),
		RequestIDHeader: "X-Request-Id",
		Headers: map[string]string{
			"Accept": "application/json",
		},
		Specs: map[string]config.SpecConfig{
			"api": {
				BaseURI:     "${API_BASE_URI}",
				ContentType: "json",
			},
			"api-verbose": {
				Extends: "api",
				Log:     []string{"request", "response"},
			},
		},
		ResponseSpecs: map[string]config.ResponseSpecConfig{
			"ok-json": {Status: 200, ContentType: "json"},
		},
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleSuite), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nreqspec project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Set API_BASE_URI and run 'reqspec run %s' to execute the example suite.\n", exampleFile)

	return nil
}
