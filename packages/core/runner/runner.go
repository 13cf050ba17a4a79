package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/assertions"
	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
	"github.com/abdul-hamid-achik/reqspec/packages/core/env"
	"github.com/abdul-hamid-achik/reqspec/packages/core/suite"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
	"github.com/abdul-hamid-achik/reqspec/packages/spec"
	"github.com/abdul-hamid-achik/reqspec/packages/stats"
	"github.com/rs/zerolog"
)

const (
	// DefaultConcurrency is the default number of concurrent requests in parallel mode
	DefaultConcurrency = 5
)

// ErrInvalidSuite wraps structural problems found before any request is sent.
var ErrInvalidSuite = errors.New("invalid suite")

type Runner struct {
	client     *http.Client
	config     *config.Config
	logger     zerolog.Logger
	nameFilter string
	variables  map[string]any
	filters    []http.Filter
}

type Option func(*Runner)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithNameFilter runs only cases whose name matches pattern. A leading or
// trailing * matches any prefix or suffix.
func WithNameFilter(pattern string) Option {
	return func(r *Runner) {
		r.nameFilter = pattern
	}
}

// WithVariables sets variables that take precedence over suite variables.
func WithVariables(vars map[string]any) Option {
	return func(r *Runner) {
		r.variables = vars
	}
}

// WithFilters adds filters to every request spec the runner builds.
func WithFilters(filters ...http.Filter) Option {
	return func(r *Runner) {
		r.filters = append(r.filters, filters...)
	}
}

// WithClient replaces the client built from config.
func WithClient(client *http.Client) Option {
	return func(r *Runner) {
		r.client = client
	}
}

// NewRunner builds a runner and its HTTP client from cfg. A nil cfg means
// config.DefaultConfig().
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	r := &Runner{
		config: cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = http.NewClient(ClientOptions(cfg)...)
	}
	return r
}

// ClientOptions translates config into client options.
func ClientOptions(cfg *config.Config) []http.ClientOption {
	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.TimeoutDuration()))
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, http.WithDefaultHeaders(cfg.Headers))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if cfg.RateLimit > 0 {
		clientOpts = append(clientOpts, http.WithRateLimit(cfg.RateLimit))
	}
	if cfg.RequestIDHeader != "" {
		clientOpts = append(clientOpts, http.WithRequestIDHeader(cfg.RequestIDHeader))
	}
	return clientOpts
}

func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	s, err := suite.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading suite: %w", err)
	}
	return r.RunSuite(ctx, s)
}

// suiteRun holds what one RunSuite call shares between its cases.
type suiteRun struct {
	suite    *suite.Suite
	registry *spec.Registry
	resolver *env.Resolver
	filters  []http.Filter
}

func (r *Runner) RunSuite(ctx context.Context, s *suite.Suite) (*RunResult, error) {
	start := time.Now()

	cfg := r.config.Merge(&config.Config{Specs: s.Specs, ResponseSpecs: s.ResponseSpecs})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSuite, s.Name, err)
	}

	latency := stats.NewLatencyFilter()
	filters := append([]http.Filter{latency}, r.filters...)
	reg, err := spec.FromConfig(cfg,
		spec.WithLogger(r.logger),
		spec.WithFilters(filters...),
		spec.WithSchemaDir(s.Dir()),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSuite, s.Name, err)
	}

	known := append(reg.Names(), reg.ResponseNames()...)
	if err := s.Validate(known...); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSuite, s.Name, err)
	}

	resolver := env.NewResolver()
	resolver.SetVariables(s.Variables)
	resolver.SetVariables(r.variables)
	resolver.SetWarnFunc(func(format string, args ...any) {
		r.logger.Warn().Str("suite", s.Name).Msgf(format, args...)
	})

	if err := r.waitForService(ctx, s.WaitFor, resolver); err != nil {
		return nil, err
	}

	run := &suiteRun{suite: s, registry: reg, resolver: resolver, filters: filters}

	// Results keep file order whichever mode runs the cases.
	results := make([]*CaseResult, len(s.Cases))
	var runnable []int
	for i := range s.Cases {
		c := &s.Cases[i]
		if reason := r.skipReason(c); reason != "" {
			results[i] = skipped(s, c, reason)
			continue
		}
		runnable = append(runnable, i)
	}

	if r.config.GetParallel() {
		r.runParallel(ctx, run, runnable, results)
	} else {
		for n, i := range runnable {
			c := &s.Cases[i]
			if ctx.Err() != nil {
				results[i] = skipped(s, c, "cancelled")
				continue
			}
			results[i] = r.runCase(ctx, run, c, false)
			if !results[i].Passed && r.config.GetBail() {
				for _, rest := range runnable[n+1:] {
					results[rest] = skipped(s, &s.Cases[rest], "bail")
				}
				break
			}
		}
	}

	result := &RunResult{Suite: s.Name, File: s.Path}
	for _, caseResult := range results {
		result.tally(caseResult)
	}

	result.Duration = time.Since(start)
	result.Latency = latency.Summary()
	result.Routes = latency.Routes()

	r.logger.Info().
		Str("suite", s.Name).
		Int("passed", result.Passed).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("suite finished")
	return result, nil
}

func (r *Runner) runParallel(ctx context.Context, run *suiteRun, indices []int, results []*CaseResult) {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var wg sync.WaitGroup
	var failed atomic.Bool
	sem := make(chan struct{}, concurrency)

	for _, i := range indices {
		wg.Add(1)
		sem <- struct{}{} // acquire semaphore

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }() // release semaphore

			c := &run.suite.Cases[idx]
			switch {
			case ctx.Err() != nil:
				results[idx] = skipped(run.suite, c, "cancelled")
			case failed.Load() && r.config.GetBail():
				results[idx] = skipped(run.suite, c, "bail")
			default:
				results[idx] = r.runCase(ctx, run, c, true)
				if !results[idx].Passed {
					failed.Store(true)
				}
			}
		}(i)
	}

	wg.Wait()
}

func (r *Runner) skipReason(c *suite.Case) string {
	if c.Skip {
		return "skipped"
	}
	if r.nameFilter != "" && !matchesPattern(c.Name, r.nameFilter) {
		return "filtered out"
	}
	return ""
}

func skipped(s *suite.Suite, c *suite.Case, reason string) *CaseResult {
	return &CaseResult{Name: c.Name, Spec: c.SpecName(s), Skipped: true, SkipReason: reason}
}

// runCase sends one case and checks its expectations. In parallel mode
// extracted values are reported but not stored in the resolver.
func (r *Runner) runCase(ctx context.Context, run *suiteRun, c *suite.Case, parallel bool) *CaseResult {
	s := run.suite
	result := &CaseResult{
		Name:      c.Name,
		Spec:      c.SpecName(s),
		Extracted: make(map[string]any),
	}

	reqSpec := http.NewRequestSpec(http.SpecOptions{Filters: run.filters})
	if result.Spec != "" {
		reqSpec, _ = run.registry.Request(result.Spec)
	}

	req := r.buildRequest(run.resolver, c)
	result.Request = req

	start := time.Now()
	resp, err := r.client.Send(ctx, reqSpec, req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		r.logger.Error().Err(err).Str("case", c.Name).Msg("request failed")
		return result
	}
	result.Response = resp
	if resp.Request != nil {
		result.Request = resp.Request
	}

	result.Assertions = r.evaluate(run, c, resp)
	if len(result.Assertions) == 0 {
		result.Passed = resp.IsSuccess()
	} else {
		result.Passed = true
		for _, a := range result.Assertions {
			if !a.Passed {
				result.Passed = false
				break
			}
		}
	}

	doc := resp.JSON()
	for _, name := range sortedKeys(c.Extract) {
		value, err := doc.Get(c.Extract[name])
		if err != nil {
			result.Passed = false
			result.Assertions = append(result.Assertions, &AssertionResult{
				Description: fmt.Sprintf("extract %s from %s", name, c.Extract[name]),
				Err:         err,
			})
			continue
		}
		result.Extracted[name] = value
		if !parallel {
			run.resolver.SetExtracted(c.Name, name, value)
		}
	}

	return result
}

func (r *Runner) buildRequest(resolver *env.Resolver, c *suite.Case) *http.Request {
	req := http.NewRequest(c.Method, resolver.Resolve(c.Path))
	for k, v := range c.Query {
		req.SetQueryParam(k, resolver.Resolve(v))
	}
	for k, v := range c.Headers {
		req.SetHeader(k, resolver.Resolve(v))
	}
	if c.ContentType != "" {
		req.SetContentType(http.ParseContentType(resolver.Resolve(c.ContentType)))
	}
	if c.Body != nil {
		req.SetBody(resolver.ResolveValue(c.Body))
	}
	return req
}

func (r *Runner) evaluate(run *suiteRun, c *suite.Case, resp *http.Response) []*AssertionResult {
	var results []*AssertionResult
	add := func(desc string, err error) {
		results = append(results, &AssertionResult{Description: desc, Passed: err == nil, Err: err})
	}
	dir := run.suite.Dir()
	exp := c.Expect

	if exp.Status != 0 {
		add(fmt.Sprintf("status == %d", exp.Status),
			assertions.ExpectWithReason("status", resp, assertions.StatusCodeEquals(exp.Status)))
	}
	if exp.ContentType != "" {
		ct := http.ParseContentType(exp.ContentType)
		add("content type "+ct.String(),
			spec.NewResponseSpec(spec.ResponseSpecOptions{ContentType: ct}).Validate(resp))
	}
	if exp.ResponseSpec != "" {
		rs, _ := run.registry.Response(exp.ResponseSpec)
		add("response spec "+exp.ResponseSpec, rs.Validate(resp))
	}

	for _, name := range sortedKeys(exp.Headers) {
		desc := fmt.Sprintf("header %s %s", name, describeMatcher(exp.Headers[name]))
		m, err := exp.Headers[name].Build(dir)
		if err != nil {
			add(desc, err)
			continue
		}
		var actual any
		if values := resp.HeaderValues(name); len(values) > 0 {
			actual = values[0]
		}
		add(desc, assertions.ExpectWithReason("header "+name, actual, m))
	}

	doc := resp.JSON()
	for _, b := range exp.Body {
		actual, err := doc.Get(b.Path)
		if err != nil && !errors.Is(err, jsonpath.ErrFieldNotFound) {
			add(b.Describe(), err)
			continue
		}
		found := err == nil
		if b.Exists != nil && (found != *b.Exists || !found || len(b.Matcher) == 0) {
			add(b.Describe(), assertions.ExpectPresence(b.Path, found, *b.Exists, actual))
			continue
		}
		if !found {
			add(b.Describe(), err)
			continue
		}
		m, err := b.Matcher.Build(dir)
		if err != nil {
			add(b.Describe(), err)
			continue
		}
		add(b.Describe(), assertions.ExpectWithReason(b.Path, actual, m))
	}

	return results
}

func describeMatcher(m suite.MatcherSpec) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s %v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}

	prefix := strings.HasSuffix(pattern, "*")
	suffix := strings.HasPrefix(pattern, "*")
	core := strings.Trim(pattern, "*")

	switch {
	case prefix && suffix:
		return strings.Contains(name, core)
	case suffix:
		return strings.HasSuffix(name, core)
	case prefix:
		return strings.HasPrefix(name, core)
	}
	return name == pattern
}
