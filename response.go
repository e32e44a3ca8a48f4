package apiclient

import (
	"net/textproto"
	"strings"
)

// Response is a decoded response: the status code and headers of the
// exchange plus the body parsed as T. A nil body is valid, for example for
// 204 No Content. Response values are immutable.
type Response[T any] struct {
	statusCode int
	headers    map[string][]string
	body       *T
}

// NewResponse wraps body with the status code and headers of cr. The header
// map is shared with cr, not copied.
func NewResponse[T any](cr ConnectorResponse, body *T) *Response[T] {
	return &Response[T]{
		statusCode: cr.StatusCode(),
		headers:    cr.AllHeaders(),
		body:       body,
	}
}

// WithBody returns a response with the status code and header map of r and
// the given body.
func WithBody[T, U any](r *Response[T], body *U) *Response[U] {
	return &Response[U]{
		statusCode: r.statusCode,
		headers:    r.headers,
		body:       body,
	}
}

// StatusCode returns the HTTP status code.
func (r *Response[T]) StatusCode() int { return r.statusCode }

// Header returns the first value of the named header field.
func (r *Response[T]) Header(name string) (string, bool) {
	values := lookupHeader(r.headers, name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Headers returns all values of the named header field, or nil if unset.
func (r *Response[T]) Headers(name string) []string {
	return lookupHeader(r.headers, name)
}

// AllHeaders returns the header map. It is shared; callers must not modify it.
func (r *Response[T]) AllHeaders() map[string][]string { return r.headers }

// Body returns the decoded body, which may be nil.
func (r *Response[T]) Body() *T { return r.body }

// lookupHeader matches name exactly, then in canonical MIME form so that
// "ETag" finds the "Etag" key produced by net/http, then case-insensitively
// for maps with lowercase keys such as HTTP/2 captures.
func lookupHeader(headers map[string][]string, name string) []string {
	if values, ok := headers[name]; ok {
		return values
	}
	if canonical := textproto.CanonicalMIMEHeaderKey(name); canonical != name {
		if values, ok := headers[canonical]; ok {
			return values
		}
	}
	for key, values := range headers {
		if strings.EqualFold(key, name) {
			return values
		}
	}
	return nil
}

func firstHeader(headers map[string][]string, name string) string {
	if values := lookupHeader(headers, name); len(values) > 0 {
		return values[0]
	}
	return ""
}
