package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
	"github.com/spf13/cobra"
)

var extractRawFlag bool

var extractCmd = &cobra.Command{
	Use:   "extract EXPR [file|-]",
	Short: "Evaluate a path expression against a JSON document",
	Long: `Evaluate a path expression against a JSON document read from a file
or from stdin, and print the result as JSON.

Examples:
  reqspec extract data.id response.json
  curl -s 'https://reqres.in/api/users?page=2' | reqspec extract 'data.findAll{u -> u.id > 10}[0].email'
  reqspec extract --raw token login.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: extractCommand,
}

func init() {
	extractCmd.Flags().BoolVarP(&extractRawFlag, "raw", "r", false, "Print strings without quotes")
}

func extractCommand(cmd *cobra.Command, args []string) error {
	path, err := jsonpath.Parse(args[0])
	if err != nil {
		return err
	}

	var body []byte
	if len(args) < 2 || args[1] == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(args[1])
	}
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	val, err := path.Evaluate(body)
	if err != nil {
		return err
	}

	if s, ok := val.(string); ok && extractRawFlag {
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	}
	encoded, err := json.MarshalIndent(val, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
