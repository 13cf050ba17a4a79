// Package output renders suite results.
//
// Supported output formats:
//   - console: colored terminal output with latency percentiles
//   - json: one JSON document covering every suite
//   - junit: JUnit XML for CI systems
//   - tap: Test Anything Protocol
//
// Every reporter implements Formatter. Formats that must see all suites
// before writing also implement Flushable.
package output
