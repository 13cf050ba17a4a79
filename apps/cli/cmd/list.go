package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/reqspec/packages/core/suite"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <suite|directory>...",
	Short: "List the cases in suite files",
	Long: `List the cases defined in suite files, with their method, path and spec.

Examples:
  reqspec list users.yaml
  reqspec list ./contracts`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectSuites(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, file := range files {
		s, err := suite.LoadFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(out, "\n%s (%s):\n", s.Name, file)
		for _, c := range s.Cases {
			name := c.Name
			if name == "" {
				name = fmt.Sprintf("%s %s", c.Method, c.Path)
			}
			fmt.Fprintf(out, "  - %s\n", name)
			fmt.Fprintf(out, "    %s %s", c.Method, c.Path)
			if specName := c.SpecName(s); specName != "" {
				fmt.Fprintf(out, " [%s]", specName)
			}
			if c.Skip {
				fmt.Fprint(out, " (skip)")
			}
			fmt.Fprintln(out)
		}
	}

	return nil
}
