package http

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"sort"
	"strings"
)

const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

// Request describes one call. Method, Path, Query, Headers, Body and
// ContentType are set by the caller; URL and Payload are filled in by
// Client.Send before filters run.
type Request struct {
	Method      string
	Path        string
	Query       map[string]string
	Headers     map[string]string
	Body        any
	ContentType ContentType

	URL     string
	Payload []byte
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:  strings.ToUpper(method),
		Path:    path,
		Query:   make(map[string]string),
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	for k := range r.Headers {
		if strings.EqualFold(k, key) {
			delete(r.Headers, k)
		}
	}
	r.Headers[http.CanonicalHeaderKey(key)] = value
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(map[string]string)
	}
	r.Query[key] = value
	return r
}

func (r *Request) SetBody(body any) *Request {
	r.Body = body
	return r
}

func (r *Request) SetContentType(ct ContentType) *Request {
	r.ContentType = ct
	return r
}

// Header returns the value of a header set on the request, case-insensitively.
func (r *Request) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// HeaderNames returns header names in sorted order.
func (r *Request) HeaderNames() []string {
	names := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (r *Request) clone() *Request {
	c := *r
	c.Method = strings.ToUpper(r.Method)
	if c.Method == "" {
		c.Method = MethodGet
	}
	c.Query = copyHeaders(r.Query)
	c.Headers = copyHeaders(r.Headers)
	return &c
}

// EncodeBody serializes body for transmission. Raw bodies ([]byte, string,
// json.RawMessage, io.Reader) pass through unchanged; structured values are
// encoded according to ct, defaulting to JSON.
func EncodeBody(body any, ct ContentType) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		return io.ReadAll(b)
	}

	switch ct {
	case ContentTypeNone, ContentTypeJSON:
		return encodeJSON(body)
	case ContentTypeXML:
		return xml.Marshal(body)
	case ContentTypeForm:
		return encodeForm(body)
	}
	if strings.HasSuffix(string(ct), "+json") {
		return encodeJSON(body)
	}
	return nil, fmt.Errorf("%w: %T as %s", ErrUnsupportedBody, body, ct)
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeForm(v any) ([]byte, error) {
	values := neturl.Values{}
	switch f := v.(type) {
	case neturl.Values:
		values = f
	case map[string]string:
		for k, val := range f {
			values.Set(k, val)
		}
	case map[string]any:
		for k, val := range f {
			values.Set(k, fmt.Sprint(val))
		}
	default:
		return nil, fmt.Errorf("%w: %T as %s", ErrUnsupportedBody, v, ContentTypeForm)
	}
	return []byte(values.Encode()), nil
}

// ParseFormBody decodes an application/x-www-form-urlencoded body.
func ParseFormBody(body string) map[string]string {
	result := make(map[string]string)
	pairs := strings.Split(body, "&")
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			key, _ := neturl.QueryUnescape(kv[0])
			value, _ := neturl.QueryUnescape(kv[1])
			result[key] = value
		}
	}
	return result
}
