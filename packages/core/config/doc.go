// Package config handles configuration loading and management for reqspec.
//
// It provides functionality for:
//   - Loading configuration from .reqspec.yaml or reqspec.config.json files
//   - Default configuration values
//   - Named request and response specs shared by suites and the CLI
package config
