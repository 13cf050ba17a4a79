package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	neturl "net/url"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
	// DefaultRequestIDHeader carries the generated correlation id
	DefaultRequestIDHeader = "X-Request-Id"
)

// Client executes requests against a RequestSpec. It holds no per-call state
// and can be shared between goroutines.
type Client struct {
	httpClient      *http.Client
	timeout         time.Duration
	followRedirect  bool
	maxRedirects    int
	validateSSL     bool
	proxyURL        string
	defaultHeaders  map[string]string
	limiter         *rate.Limiter
	requestIDHeader string
	transport       http.RoundTripper
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:         DefaultTimeout,
		followRedirect:  true,
		maxRedirects:    DefaultMaxRedirects,
		validateSSL:     true,
		defaultHeaders:  make(map[string]string),
		requestIDHeader: DefaultRequestIDHeader,
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := c.transport
	if transport == nil {
		t := &http.Transport{
			MaxIdleConns:        DefaultMaxIdleConns,
			MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
			IdleConnTimeout:     DefaultIdleConnTimeout,
		}
		if !c.validateSSL {
			t.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
		if c.proxyURL != "" {
			if proxyURL, err := neturl.Parse(c.proxyURL); err == nil {
				t.Proxy = http.ProxyURL(proxyURL)
			}
		}
		transport = t
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	c.httpClient = &http.Client{
		Transport:     transport,
		Timeout:       c.timeout,
		CheckRedirect: redirectPolicy,
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[http.CanonicalHeaderKey(key)] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range canonicalHeaders(headers) {
			c.defaultHeaders[k] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables it.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRequestIDHeader names the header used for generated request ids.
// An empty name turns generation off.
func WithRequestIDHeader(name string) ClientOption {
	return func(c *Client) {
		c.requestIDHeader = name
	}
}

// WithTransport replaces the underlying round tripper. SSL and proxy
// options are ignored when a transport is given.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

// Send resolves req against spec, runs the spec's filters and performs the
// call. Any failure to obtain a complete response is returned as a
// *TransportError; non-2xx statuses are not errors.
func (c *Client) Send(ctx context.Context, spec RequestSpec, req *Request) (*Response, error) {
	if req == nil {
		req = NewRequest(MethodGet, "")
	}
	prepared := req.clone()

	fullURL, err := spec.ResolveURL(prepared.Path, prepared.Query)
	if err != nil {
		return nil, err
	}
	prepared.URL = fullURL

	ct := prepared.ContentType
	if !ct.IsSet() {
		ct = spec.ContentType()
	}
	payload, err := EncodeBody(prepared.Body, ct)
	if err != nil {
		return nil, err
	}
	prepared.Payload = payload
	if payload != nil && !ct.IsSet() {
		ct = ContentTypeJSON
	}
	prepared.ContentType = ct

	headers := copyHeaders(c.defaultHeaders)
	for k, v := range spec.Headers() {
		headers[k] = v
	}
	for k, v := range canonicalHeaders(prepared.Headers) {
		headers[k] = v
	}
	if payload != nil && headerValue(headers, "Content-Type") == "" {
		headers["Content-Type"] = ct.String()
	}
	if c.requestIDHeader != "" && headerValue(headers, c.requestIDHeader) == "" {
		headers[c.requestIDHeader] = uuid.NewString()
	}
	prepared.Headers = headers

	filters := spec.Filters()
	prepared = runBeforeSend(filters, prepared)
	prepared.Headers = canonicalHeaders(prepared.Headers)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: prepared.Method, URL: prepared.URL, Err: err}
		}
	}

	var body io.Reader
	if prepared.Payload != nil {
		body = bytes.NewReader(prepared.Payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, prepared.Method, prepared.URL, body)
	if err != nil {
		return nil, &TransportError{Method: prepared.Method, URL: prepared.URL, Err: err}
	}
	for k, v := range prepared.Headers {
		httpReq.Header[k] = []string{v}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: prepared.Method, URL: prepared.URL, Err: unwrapURLError(err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Method: prepared.Method, URL: prepared.URL, Err: err}
	}
	duration := time.Since(start)

	resp := &Response{
		StatusCode:  httpResp.StatusCode,
		Status:      httpResp.Status,
		Headers:     flattenHeaders(httpResp.Header),
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        respBody,
		Duration:    duration,
		RequestID:   headerValue(prepared.Headers, c.requestIDHeader),
		Request:     prepared,
	}

	return runAfterReceive(filters, resp), nil
}

func (c *Client) Get(ctx context.Context, spec RequestSpec, path string) (*Response, error) {
	return c.Send(ctx, spec, NewRequest(MethodGet, path))
}

func (c *Client) Post(ctx context.Context, spec RequestSpec, path string, body any) (*Response, error) {
	return c.Send(ctx, spec, NewRequest(MethodPost, path).SetBody(body))
}

func (c *Client) Put(ctx context.Context, spec RequestSpec, path string, body any) (*Response, error) {
	return c.Send(ctx, spec, NewRequest(MethodPut, path).SetBody(body))
}

func (c *Client) Patch(ctx context.Context, spec RequestSpec, path string, body any) (*Response, error) {
	return c.Send(ctx, spec, NewRequest(MethodPatch, path).SetBody(body))
}

func (c *Client) Delete(ctx context.Context, spec RequestSpec, path string) (*Response, error) {
	return c.Send(ctx, spec, NewRequest(MethodDelete, path))
}

func headerValue(headers map[string]string, name string) string {
	if name == "" {
		return ""
	}
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == http.CanonicalHeaderKey(name) {
			return v
		}
	}
	return ""
}

// flattenHeaders turns the header map into a list sorted by name, keeping
// the received order of repeated values.
func flattenHeaders(h http.Header) []Header {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]Header, 0, len(h))
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, Header{Name: name, Value: v})
		}
	}
	return out
}

func unwrapURLError(err error) error {
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
