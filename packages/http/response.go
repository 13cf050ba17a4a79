package http

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/jsonpath"
)

// Header is one received header line. A name may repeat.
type Header struct {
	Name  string
	Value string
}

// Response is a fully received exchange. It is built once by Client.Send and
// should be treated as read-only.
type Response struct {
	StatusCode  int
	Status      string
	// Headers is sorted by canonical name. Repeated values of one name keep
	// their received order; the order between different names is not kept.
	Headers     []Header
	ContentType string
	Body        []byte
	Duration    time.Duration
	RequestID   string
	Request     *Request
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// JSON wraps the body for path extraction.
func (r *Response) JSON() *jsonpath.Document {
	return jsonpath.From(r.Body)
}

// Path extracts a value from the body with a path expression.
func (r *Response) Path(expr string) (any, error) {
	return jsonpath.Get(r.Body, expr)
}

// Header returns the first value of a header, case-insensitively.
func (r *Response) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			return h.Value
		}
	}
	return ""
}

// HeaderValues returns every value received for a header in wire order.
func (r *Response) HeaderValues(key string) []string {
	var out []string
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			out = append(out, h.Value)
		}
	}
	return out
}

// HeaderMap flattens headers, joining repeated values with ", ".
func (r *Response) HeaderMap() map[string]string {
	out := make(map[string]string, len(r.Headers))
	for _, h := range r.Headers {
		if prev, ok := out[h.Name]; ok {
			out[h.Name] = prev + ", " + h.Value
			continue
		}
		out[h.Name] = h.Value
	}
	return out
}

func (r *Response) IsJSON() bool {
	return ContentTypeJSON.Matches(r.ContentType)
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
