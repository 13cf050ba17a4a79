// Package http sends contract-test requests against a configured service.
//
// It wraps the standard library's http package with:
//   - Immutable, mergeable request specifications (base URI, base path, default headers, content type, filters)
//   - Structured body serialization driven by content type
//   - An ordered filter chain invoked around every exchange
//   - Request and response logging filters
//   - Configurable timeouts, redirects, proxy, rate limiting and request ids
package http
