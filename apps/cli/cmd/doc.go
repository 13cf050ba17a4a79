// Package cmd implements the reqspec CLI commands using Cobra.
//
// Available commands:
//   - run: Execute contract suites and report results
//   - call: Send one request through a named spec
//   - extract: Evaluate a path expression against a JSON document
//   - mock: Serve stub responses from route tables
//   - validate: Check suite files without sending requests
//   - list: Display the cases defined in suite files
//   - init: Create a config file and an example suite
//   - version: Show reqspec version information
//
// Flag defaults can be set through REQSPEC_* environment variables. Errors
// map to the exit codes in exitcodes.go.
package cmd
