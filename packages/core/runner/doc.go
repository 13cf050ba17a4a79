// Package runner executes contract suites and collects their results.
//
// It provides functionality for:
//   - Running suite files or in-memory suites
//   - Resolving {{variables}} from suite variables, extracted values and the environment
//   - Chaining values extracted from one case into later cases
//   - Parallel execution with configurable concurrency
//   - Latency percentiles for every suite run
//
// Cases run in file order unless parallel mode is enabled, in which case
// extracted values are not shared between cases.
package runner
