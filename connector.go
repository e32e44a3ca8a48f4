package apiclient

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// ConnectorResponse is a finished transport response. The body stream is
// single use: implementations return ErrBodyConsumed on a second call.
type ConnectorResponse interface {
	StatusCode() int
	AllHeaders() map[string][]string
	BodyStream() (io.ReadCloser, error)
}

// FromHTTP adapts a *http.Response. Bodies still marked
// "Content-Encoding: gzip" are decompressed on read.
func FromHTTP(resp *http.Response) ConnectorResponse {
	if resp == nil {
		return nil
	}
	return &httpResponse{resp: resp}
}

type httpResponse struct {
	resp     *http.Response
	consumed atomic.Bool
}

func (h *httpResponse) StatusCode() int { return h.resp.StatusCode }

func (h *httpResponse) AllHeaders() map[string][]string { return h.resp.Header }

func (h *httpResponse) BodyStream() (io.ReadCloser, error) {
	if !h.consumed.CompareAndSwap(false, true) {
		return nil, ErrBodyConsumed
	}
	body := h.resp.Body
	if body == nil || body == http.NoBody {
		return body, nil
	}
	if !strings.EqualFold(h.resp.Header.Get("Content-Encoding"), "gzip") {
		return body, nil
	}

	gz, err := gzip.NewReader(body)
	if err != nil {
		//nolint:errcheck,gosec // the gzip header error is the one worth reporting
		body.Close()
		return nil, fmt.Errorf("gzip body: %w", err)
	}
	return &gzipBody{Reader: gz, body: body}, nil
}

// gzipBody closes both the gzip reader and the underlying stream.
type gzipBody struct {
	*gzip.Reader
	body io.Closer
}

func (g *gzipBody) Close() error {
	return errors.Join(g.Reader.Close(), g.body.Close())
}

// Capture is an in-memory ConnectorResponse, typically a recorded exchange
// loaded with LoadCapture.
type Capture struct {
	Status int                 `json:"status" yaml:"status"`
	Header map[string][]string `json:"headers" yaml:"headers"`
	Body   string              `json:"body" yaml:"body"`

	consumed atomic.Bool
}

// NewCapture returns a capture with the given status, headers and body.
func NewCapture(status int, header map[string][]string, body string) *Capture {
	return &Capture{Status: status, Header: header, Body: body}
}

// LoadCapture reads a capture document. YAML and JSON are both accepted.
func LoadCapture(r io.Reader) (*Capture, error) {
	var c Capture
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("load capture: %w", err)
	}
	if c.Status == 0 {
		return nil, errors.New("load capture: missing status")
	}
	if c.Header == nil {
		c.Header = map[string][]string{}
	}
	return &c, nil
}

// StatusCode returns the recorded status.
func (c *Capture) StatusCode() int { return c.Status }

// AllHeaders returns the recorded header map.
func (c *Capture) AllHeaders() map[string][]string { return c.Header }

// BodyStream returns the recorded body the first time it is called.
func (c *Capture) BodyStream() (io.ReadCloser, error) {
	if !c.consumed.CompareAndSwap(false, true) {
		return nil, ErrBodyConsumed
	}
	return io.NopCloser(strings.NewReader(c.Body)), nil
}
