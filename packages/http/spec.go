package http

import (
	"fmt"
	"net/http"
	neturl "net/url"
	"sort"
	"strings"
)

// RequestSpec holds reusable defaults for outgoing calls. It is immutable once
// built and safe to share between goroutines.
type RequestSpec struct {
	baseURI     string
	basePath    string
	contentType ContentType
	headers     map[string]string
	filters     []Filter
}

// SpecOptions configures NewRequestSpec. Used as an override in Merge, where
// zero-valued fields mean "keep the base value".
type SpecOptions struct {
	BaseURI     string
	BasePath    string
	ContentType ContentType
	Headers     map[string]string
	Filters     []Filter
}

func NewRequestSpec(opts SpecOptions) RequestSpec {
	return RequestSpec{
		baseURI:     strings.TrimSpace(opts.BaseURI),
		basePath:    strings.TrimSpace(opts.BasePath),
		contentType: opts.ContentType,
		headers:     canonicalHeaders(opts.Headers),
		filters:     append([]Filter{}, opts.Filters...),
	}
}

// Merge returns a new spec where every field set in override wins. Headers
// are merged key by key; filters are appended after the base filters.
func Merge(base RequestSpec, override SpecOptions) RequestSpec {
	result := RequestSpec{
		baseURI:     base.baseURI,
		basePath:    base.basePath,
		contentType: base.contentType,
		headers:     copyHeaders(base.headers),
		filters:     make([]Filter, 0, len(base.filters)+len(override.Filters)),
	}

	if v := strings.TrimSpace(override.BaseURI); v != "" {
		result.baseURI = v
	}
	if v := strings.TrimSpace(override.BasePath); v != "" {
		result.basePath = v
	}
	if override.ContentType.IsSet() {
		result.contentType = override.ContentType
	}
	for k, v := range canonicalHeaders(override.Headers) {
		result.headers[k] = v
	}

	result.filters = append(result.filters, base.filters...)
	result.filters = append(result.filters, override.Filters...)
	return result
}

// With is shorthand for Merge(s, override).
func (s RequestSpec) With(override SpecOptions) RequestSpec {
	return Merge(s, override)
}

// Options returns the spec as builder options, useful for merging two built specs.
func (s RequestSpec) Options() SpecOptions {
	return SpecOptions{
		BaseURI:     s.baseURI,
		BasePath:    s.basePath,
		ContentType: s.contentType,
		Headers:     copyHeaders(s.headers),
		Filters:     s.Filters(),
	}
}

func (s RequestSpec) BaseURI() string {
	return s.baseURI
}

func (s RequestSpec) BasePath() string {
	return s.basePath
}

func (s RequestSpec) ContentType() ContentType {
	return s.contentType
}

func (s RequestSpec) Headers() map[string]string {
	return copyHeaders(s.headers)
}

func (s RequestSpec) Filters() []Filter {
	return append([]Filter{}, s.filters...)
}

// ResolveURL joins base URI, base path and path, then merges the query
// carried in path with query. An absolute http(s) path bypasses the base.
func (s RequestSpec) ResolveURL(path string, query map[string]string) (string, error) {
	ref, err := neturl.Parse(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	var u *neturl.URL
	if ref.IsAbs() {
		u = ref
	} else {
		if s.baseURI == "" {
			return "", ErrMissingBaseURI
		}
		u, err = neturl.Parse(s.baseURI)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		u.Path = joinPath(u.Path, s.basePath, ref.Path)
		u.RawPath = ""
		q := u.Query()
		for k, vs := range ref.Query() {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	if err := ValidateURL(u.String()); err != nil {
		return "", err
	}
	return u.String(), nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported URL scheme: %s (only http and https are allowed)", ErrInvalidURL, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: URL must have a host", ErrInvalidURL)
	}

	return nil
}

func joinPath(parts ...string) string {
	var b strings.Builder
	trailing := false
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(p)
	}
	if last := parts[len(parts)-1]; strings.HasSuffix(last, "/") && len(strings.Trim(last, "/")) > 0 {
		trailing = true
	}
	if b.Len() == 0 {
		return "/"
	}
	if trailing {
		b.WriteByte('/')
	}
	return b.String()
}

// canonicalHeaders copies h with every name in canonical form. Names that
// differ only in case collapse to one entry; the last in sorted key order wins.
func canonicalHeaders(h map[string]string) map[string]string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(h))
	for _, k := range keys {
		out[http.CanonicalHeaderKey(k)] = h[k]
	}
	return out
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
