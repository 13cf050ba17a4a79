// Package spec keeps named request and response specifications.
//
// A Registry maps names to http.RequestSpec and ResponseSpec values so tests,
// suites and the CLI can refer to a configured API by name. FromConfig builds
// one from the specs and responseSpecs sections of a config file.
package spec
