package http

import (
	"mime"
	"strings"
)

// ContentType is a media type used for serializing request bodies and for
// response expectations. The zero value means "not set".
type ContentType string

const (
	ContentTypeNone   ContentType = ""
	ContentTypeJSON   ContentType = "application/json"
	ContentTypeXML    ContentType = "application/xml"
	ContentTypeText   ContentType = "text/plain"
	ContentTypeHTML   ContentType = "text/html"
	ContentTypeForm   ContentType = "application/x-www-form-urlencoded"
	ContentTypeBinary ContentType = "application/octet-stream"
)

var contentTypeAliases = map[string]ContentType{
	"json":   ContentTypeJSON,
	"xml":    ContentTypeXML,
	"text":   ContentTypeText,
	"html":   ContentTypeHTML,
	"form":   ContentTypeForm,
	"binary": ContentTypeBinary,
}

// ParseContentType accepts short names (json, xml, text, html, form, binary)
// or any media type. Parameters such as charset are dropped.
func ParseContentType(s string) ContentType {
	s = strings.TrimSpace(s)
	if s == "" {
		return ContentTypeNone
	}
	if ct, ok := contentTypeAliases[strings.ToLower(s)]; ok {
		return ct
	}
	return ContentType(mediaType(s))
}

func (ct ContentType) String() string {
	return string(ct)
}

func (ct ContentType) IsSet() bool {
	return ct != ContentTypeNone
}

// Matches reports whether a Content-Type header value has this media type.
// JSON also matches structured-syntax suffixes such as application/problem+json.
func (ct ContentType) Matches(header string) bool {
	got := mediaType(header)
	if got == "" {
		return false
	}
	if got == string(ct) {
		return true
	}
	if ct == ContentTypeJSON && strings.HasSuffix(got, "+json") {
		return true
	}
	if ct == ContentTypeXML && (got == "text/xml" || strings.HasSuffix(got, "+xml")) {
		return true
	}
	return false
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		mt, _, _ = strings.Cut(header, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
