// Package stats records request latency from inside the filter chain.
package stats
