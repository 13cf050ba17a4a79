// Package jsonpath extracts values from JSON response bodies using GPath-style
// path expressions.
//
// Supported expression forms:
//   - Field access: data.id, user.address.city
//   - Index access: data[0].id, matrix[1][2], [0].name
//   - Wildcard collect: data.*.email, data[*].id
//   - Predicate filters: data.findAll{user -> user.id > 10 && user.last_name == 'Howell'}
//   - First match: data.find{it.id == 7}.email
//
// Values are returned as nil, bool, string, int64, float64, map[string]any or
// []any. Errors wrap one of the package sentinels so callers can use errors.Is.
package jsonpath
