package spec

import (
	"fmt"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
	"github.com/rs/zerolog"
)

type buildOptions struct {
	logger    zerolog.Logger
	filters   []http.Filter
	schemaDir string
}

type Option func(*buildOptions)

// WithLogger sets the logger used by logging filters named in a spec's log list.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// WithFilters appends filters to every request spec built from config.
func WithFilters(filters ...http.Filter) Option {
	return func(o *buildOptions) {
		o.filters = append(o.filters, filters...)
	}
}

// WithSchemaDir resolves relative schema paths in response specs.
func WithSchemaDir(dir string) Option {
	return func(o *buildOptions) {
		o.schemaDir = dir
	}
}

// FromConfig builds a registry from cfg.Specs and cfg.ResponseSpecs. A spec
// that extends another is merged over its parent.
func FromConfig(cfg *config.Config, opts ...Option) (*Registry, error) {
	o := &buildOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	reg := NewRegistry()
	if cfg == nil {
		return reg, nil
	}

	order, err := cfg.SpecOrder()
	if err != nil {
		return nil, err
	}

	for _, name := range order {
		sc := cfg.Specs[name]
		options, err := specOptions(name, sc, o)
		if err != nil {
			return nil, err
		}

		built := http.NewRequestSpec(http.SpecOptions{Filters: o.filters})
		if sc.Extends != "" {
			parent, ok := reg.Request(sc.Extends)
			if !ok {
				return nil, fmt.Errorf("spec %q extends unknown spec %q", name, sc.Extends)
			}
			built = parent
		}
		reg.RegisterRequest(name, http.Merge(built, options))
	}

	for name, rc := range cfg.ResponseSpecs {
		reg.RegisterResponse(name, NewResponseSpec(ResponseSpecOptions{
			StatusCode:  rc.Status,
			ContentType: http.ParseContentType(rc.ContentType),
			Schema:      rc.Schema,
			SchemaDir:   o.schemaDir,
		}))
	}

	return reg, nil
}

func specOptions(name string, sc config.SpecConfig, o *buildOptions) (http.SpecOptions, error) {
	opts := http.SpecOptions{
		BaseURI:     os.ExpandEnv(sc.BaseURI),
		BasePath:    sc.BasePath,
		ContentType: http.ParseContentType(sc.ContentType),
		Headers:     make(map[string]string, len(sc.Headers)),
	}
	for k, v := range sc.Headers {
		opts.Headers[k] = os.ExpandEnv(v)
	}

	var logOpts []http.LogOption
	var wantRequest, wantResponse bool
	for _, entry := range sc.Log {
		switch strings.ToLower(strings.TrimSpace(entry)) {
		case "request":
			wantRequest = true
		case "response":
			wantResponse = true
		case "all":
			wantRequest, wantResponse = true, true
		case "body":
			logOpts = append(logOpts, http.WithBody(true))
		case "curl":
			logOpts = append(logOpts, http.WithCurl(true))
		default:
			return opts, fmt.Errorf("spec %q: unknown log option %q", name, entry)
		}
	}

	if wantRequest {
		opts.Filters = append(opts.Filters, http.NewRequestLoggingFilter(o.logger, logOpts...))
	}
	if wantResponse {
		opts.Filters = append(opts.Filters, http.NewResponseLoggingFilter(o.logger, logOpts...))
	}
	return opts, nil
}
