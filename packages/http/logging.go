package http

import (
	"sort"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/rs/zerolog"
)

const redacted = "[REDACTED]"

var defaultRedactedHeaders = []string{"Authorization", "Cookie", "Set-Cookie", "X-Api-Key"}

type logConfig struct {
	curl     bool
	body     bool
	redacted map[string]bool
}

type LogOption func(*logConfig)

// WithCurl adds a copy-pasteable curl command to request log events.
func WithCurl(enabled bool) LogOption {
	return func(c *logConfig) {
		c.curl = enabled
	}
}

// WithBody includes the request or response body in log events.
func WithBody(enabled bool) LogOption {
	return func(c *logConfig) {
		c.body = enabled
	}
}

// WithRedactedHeaders replaces the default list of headers whose values
// are masked in log output.
func WithRedactedHeaders(names ...string) LogOption {
	return func(c *logConfig) {
		c.redacted = make(map[string]bool, len(names))
		for _, n := range names {
			c.redacted[strings.ToLower(n)] = true
		}
	}
}

func newLogConfig(opts []LogOption) *logConfig {
	c := &logConfig{redacted: make(map[string]bool)}
	for _, n := range defaultRedactedHeaders {
		c.redacted[strings.ToLower(n)] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *logConfig) mask(name, value string) string {
	if c.redacted[strings.ToLower(name)] {
		return redacted
	}
	return value
}

// RedactHeaders returns a copy of headers with sensitive values masked.
func RedactHeaders(headers map[string]string, opts ...LogOption) map[string]string {
	if headers == nil {
		return nil
	}
	cfg := newLogConfig(opts)
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = cfg.mask(k, v)
	}
	return out
}

// RequestLoggingFilter writes one debug event per outgoing request.
type RequestLoggingFilter struct {
	logger zerolog.Logger
	cfg    *logConfig
}

func NewRequestLoggingFilter(logger zerolog.Logger, opts ...LogOption) *RequestLoggingFilter {
	return &RequestLoggingFilter{logger: logger, cfg: newLogConfig(opts)}
}

func (f *RequestLoggingFilter) BeforeSend(req *Request) *Request {
	headers := zerolog.Dict()
	for _, name := range req.HeaderNames() {
		headers.Str(name, f.cfg.mask(name, req.Headers[name]))
	}

	ev := f.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Dict("headers", headers)
	if f.cfg.body && len(req.Payload) > 0 {
		ev = ev.Str("body", string(req.Payload))
	}
	if f.cfg.curl {
		ev = ev.Str("curl", f.curl(req))
	}
	ev.Msg("sending request")
	return req
}

func (f *RequestLoggingFilter) AfterReceive(resp *Response) *Response {
	return resp
}

func (f *RequestLoggingFilter) curl(req *Request) string {
	masked := make(map[string]string, len(req.Headers))
	for k, v := range req.Headers {
		masked[k] = f.cfg.mask(k, v)
	}
	return CurlCommand(req.Method, req.URL, masked, req.Payload)
}

// ResponseLoggingFilter writes one event per received response. 4xx and 5xx
// responses are logged at warn level, everything else at debug.
type ResponseLoggingFilter struct {
	logger zerolog.Logger
	cfg    *logConfig
}

func NewResponseLoggingFilter(logger zerolog.Logger, opts ...LogOption) *ResponseLoggingFilter {
	return &ResponseLoggingFilter{logger: logger, cfg: newLogConfig(opts)}
}

func (f *ResponseLoggingFilter) BeforeSend(req *Request) *Request {
	return req
}

func (f *ResponseLoggingFilter) AfterReceive(resp *Response) *Response {
	ev := f.logger.Debug()
	if resp.StatusCode >= 400 {
		ev = f.logger.Warn()
	}

	headers := zerolog.Dict()
	for _, h := range resp.Headers {
		headers.Str(h.Name, f.cfg.mask(h.Name, h.Value))
	}

	ev = ev.Int("status", resp.StatusCode).
		Dur("duration", resp.Duration).
		Str("request_id", resp.RequestID).
		Dict("headers", headers)
	if resp.Request != nil {
		ev = ev.Str("method", resp.Request.Method).Str("url", resp.Request.URL)
	}
	if f.cfg.body && len(resp.Body) > 0 {
		ev = ev.Str("body", resp.BodyString())
	}
	ev.Msg("received response")
	return resp
}

// CurlCommand renders an equivalent shell command. Headers are emitted in
// sorted order.
func CurlCommand(method, url string, headers map[string]string, body []byte) string {
	args := []string{"curl", "-X", method}

	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		args = append(args, "-H", k+": "+headers[k])
	}

	if len(body) > 0 {
		args = append(args, "--data-raw", string(body))
	}
	args = append(args, url)
	return shellescape.QuoteCommand(args)
}
