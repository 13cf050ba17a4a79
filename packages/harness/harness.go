package harness

import (
	"context"

	"github.com/abdul-hamid-achik/reqspec/packages/http"
)

// Harness pairs a client with the request spec every call starts from.
type Harness struct {
	client *http.Client
	spec   http.RequestSpec
}

// New returns a harness. A nil client means http.NewClient().
func New(client *http.Client, spec http.RequestSpec) *Harness {
	if client == nil {
		client = http.NewClient()
	}
	return &Harness{client: client, spec: spec}
}

func (h *Harness) Spec() http.RequestSpec {
	return h.spec
}

// Given starts a new request.
func (h *Harness) Given() *RequestSpecification {
	return &RequestSpecification{
		client: h.client,
		spec:   h.spec,
		req:    http.NewRequest(http.MethodGet, ""),
	}
}

// RequestSpecification accumulates one request. It is not safe for
// concurrent use; call Given per goroutine.
type RequestSpecification struct {
	client *http.Client
	spec   http.RequestSpec
	req    *http.Request
}

// Spec merges override into the spec for this request only.
func (r *RequestSpecification) Spec(override http.SpecOptions) *RequestSpecification {
	r.spec = http.Merge(r.spec, override)
	return r
}

func (r *RequestSpecification) Header(key, value string) *RequestSpecification {
	r.req.SetHeader(key, value)
	return r
}

func (r *RequestSpecification) QueryParam(key, value string) *RequestSpecification {
	r.req.SetQueryParam(key, value)
	return r
}

func (r *RequestSpecification) ContentType(ct http.ContentType) *RequestSpecification {
	r.req.SetContentType(ct)
	return r
}

func (r *RequestSpecification) Body(body any) *RequestSpecification {
	r.req.SetBody(body)
	return r
}

func (r *RequestSpecification) Get(ctx context.Context, path string) *Result {
	return r.Send(ctx, http.MethodGet, path)
}

func (r *RequestSpecification) Post(ctx context.Context, path string) *Result {
	return r.Send(ctx, http.MethodPost, path)
}

func (r *RequestSpecification) Put(ctx context.Context, path string) *Result {
	return r.Send(ctx, http.MethodPut, path)
}

func (r *RequestSpecification) Patch(ctx context.Context, path string) *Result {
	return r.Send(ctx, http.MethodPatch, path)
}

func (r *RequestSpecification) Delete(ctx context.Context, path string) *Result {
	return r.Send(ctx, http.MethodDelete, path)
}

// Send performs the request with any method.
func (r *RequestSpecification) Send(ctx context.Context, method, path string) *Result {
	req := *r.req
	req.Method = method
	req.Path = path
	resp, err := r.client.Send(ctx, r.spec, &req)
	return &Result{Response: resp, Err: err}
}

// Result is the outcome of one call: a complete response or the error that
// prevented one.
type Result struct {
	Response *http.Response
	Err      error
}
