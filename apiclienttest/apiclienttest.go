// Package apiclienttest provides test helpers for the apiclient package.
package apiclienttest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bjaus/apiclient"
)

// Response is a ConnectorResponse that records how its body stream is used.
type Response struct {
	Status int
	Header map[string][]string

	body     io.Reader
	readErr  error
	closeErr error
	nilBody  bool

	opened atomic.Int32
	reads  atomic.Int32
	closes atomic.Int32
}

// ResponseOption configures a Response.
type ResponseOption func(*Response)

// WithHeader adds values for a header field, keeping the given case.
func WithHeader(name string, values ...string) ResponseOption {
	return func(r *Response) {
		r.Header[name] = append(r.Header[name], values...)
	}
}

// WithReadError makes every read of the body fail with err.
func WithReadError(err error) ResponseOption {
	return func(r *Response) {
		r.readErr = err
	}
}

// WithCloseError makes closing the body fail with err.
func WithCloseError(err error) ResponseOption {
	return func(r *Response) {
		r.closeErr = err
	}
}

// WithNilBody makes BodyStream return a nil stream.
func WithNilBody() ResponseOption {
	return func(r *Response) {
		r.nilBody = true
	}
}

// NewResponse creates a tracked response with the given status and body.
func NewResponse(status int, body string, opts ...ResponseOption) *Response {
	r := &Response{
		Status: status,
		Header: map[string][]string{},
		body:   strings.NewReader(body),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StatusCode implements apiclient.ConnectorResponse.
func (r *Response) StatusCode() int { return r.Status }

// AllHeaders implements apiclient.ConnectorResponse.
func (r *Response) AllHeaders() map[string][]string { return r.Header }

// BodyStream implements apiclient.ConnectorResponse.
func (r *Response) BodyStream() (io.ReadCloser, error) {
	if r.opened.Add(1) > 1 {
		return nil, apiclient.ErrBodyConsumed
	}
	if r.nilBody {
		return nil, nil
	}
	return &trackedBody{r: r}, nil
}

// Opened reports how many times BodyStream was called.
func (r *Response) Opened() int { return int(r.opened.Load()) }

// Reads reports how many Read calls reached the body.
func (r *Response) Reads() int { return int(r.reads.Load()) }

// Closes reports how many times the body was closed.
func (r *Response) Closes() int { return int(r.closes.Load()) }

type trackedBody struct {
	r *Response
}

func (b *trackedBody) Read(p []byte) (int, error) {
	b.r.reads.Add(1)
	if b.r.readErr != nil {
		return 0, b.r.readErr
	}
	return b.r.body.Read(p)
}

func (b *trackedBody) Close() error {
	b.r.closes.Add(1)
	return b.r.closeErr
}

// Record is a captured log record with its attributes flattened.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]slog.Value
}

// LogRecorder is a slog.Handler that keeps every record in memory.
type LogRecorder struct {
	mu      sync.Mutex
	records []Record
}

// NewLogger returns a debug-level logger writing to a new LogRecorder.
func NewLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return slog.New(rec), rec
}

// Enabled implements slog.Handler.
func (*LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (l *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	rec := Record{Level: r.Level, Message: r.Message, Attrs: map[string]slog.Value{}}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value
		return true
	})
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler. Attributes are not retained.
func (l *LogRecorder) WithAttrs([]slog.Attr) slog.Handler { return l }

// WithGroup implements slog.Handler. Groups are not retained.
func (l *LogRecorder) WithGroup(string) slog.Handler { return l }

// Records returns a copy of the captured records.
func (l *LogRecorder) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.records...)
}

// Client wraps an httptest.Server and returns its responses as
// ConnectorResponse values.
type Client struct {
	Server *httptest.Server
}

// NewClient starts a test server for h.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Get sends a GET request and returns the adapted response. The body is
// left unread and is closed at the end of the test if nobody else did.
func (c *Client) Get(t testing.TB, path string, header ...string) apiclient.ConnectorResponse {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.Server.URL+path, nil)
	if err != nil {
		t.Fatalf("apiclienttest: create request: %v", err)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("apiclienttest: execute request: %v", err)
	}
	t.Cleanup(func() {
		//nolint:errcheck,gosec // already closed when the body was consumed
		resp.Body.Close()
	})

	return apiclient.FromHTTP(resp)
}
