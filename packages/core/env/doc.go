// Package env resolves {{variable}} placeholders in suite files.
//
// Lookup order for {{name}}:
//   - values extracted from earlier responses
//   - suite and command-line variables
//   - the OS environment
//
// {{$NAME}} reads the OS environment only, and {{fn(args)}} calls a
// template function such as uuid() or randomEmail(). .env files can be
// loaded as an extra variable source.
package env
