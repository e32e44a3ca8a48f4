package apiclient_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/apiclient"
	"github.com/bjaus/apiclient/apiclienttest"
)

func TestFromHTTP(t *testing.T) {
	t.Parallel()

	c := apiclienttest.NewClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Add("Link", `<https://example.com/?page=2>; rel="next"`)
		w.Header().Add("Link", `<https://example.com/?page=5>; rel="last"`)
		_, _ = io.WriteString(w, `{"id":42,"name":"octo"}`)
	}))

	cr := c.Get(t, "/repos/1")
	assert.Equal(t, http.StatusOK, cr.StatusCode())

	res, err := apiclient.Parse[record](nil, cr)
	require.NoError(t, err)
	assert.Equal(t, record{ID: 42, Name: "octo"}, *res.Body())

	etag, ok := res.Header("ETag")
	assert.True(t, ok)
	assert.Equal(t, `"abc123"`, etag)
	assert.Len(t, res.Headers("Link"), 2)

	_, err = cr.BodyStream()
	require.ErrorIs(t, err, apiclient.ErrBodyConsumed)
}

func TestFromHTTP_nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, apiclient.FromHTTP(nil))
}

func TestFromHTTP_gzip_body(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := io.WriteString(gz, `{"id":7,"name":"zipped"}`)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	compressed := buf.Bytes()

	c := apiclienttest.NewClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(compressed)
	}))

	// An explicit Accept-Encoding stops net/http from decompressing.
	cr := c.Get(t, "/", "Accept-Encoding", "gzip")

	got, err := apiclient.ParseBody[record](nil, cr)
	require.NoError(t, err)
	assert.Equal(t, record{ID: 7, Name: "zipped"}, *got)
}

func TestFromHTTP_bad_gzip_body(t *testing.T) {
	t.Parallel()

	cr := apiclient.FromHTTP(&http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Encoding": {"gzip"}},
		Body:       io.NopCloser(strings.NewReader("not gzip")),
	})

	_, err := apiclient.BodyString(cr)
	require.ErrorIs(t, err, apiclient.ErrRead)
}

func TestFromHTTP_no_body(t *testing.T) {
	t.Parallel()

	cr := apiclient.FromHTTP(&http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: http.NoBody})
	text, err := apiclient.BodyString(cr)
	require.NoError(t, err)
	assert.Empty(t, text)

	cr = apiclient.FromHTTP(&http.Response{StatusCode: http.StatusOK, Header: http.Header{}})
	_, err = apiclient.BodyString(cr)
	require.ErrorIs(t, err, apiclient.ErrNilBody)
}

func TestCapture(t *testing.T) {
	t.Parallel()

	c := apiclient.NewCapture(http.StatusOK, map[string][]string{"ETag": {"abc123"}}, `{"id":1}`)
	assert.Equal(t, http.StatusOK, c.StatusCode())
	assert.Equal(t, map[string][]string{"ETag": {"abc123"}}, c.AllHeaders())

	text, err := apiclient.BodyString(c)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, text)

	_, err = c.BodyStream()
	require.ErrorIs(t, err, apiclient.ErrBodyConsumed)
}

func TestLoadCapture(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		doc     string
		status  int
		headers map[string][]string
		body    string
		wantErr bool
	}{
		"yaml": {
			doc: `
status: 200
headers:
  ETag: ["abc123"]
  Content-Type: ["application/json"]
body: |
  {"id":42,"name":"octo"}
`,
			status: 200,
			headers: map[string][]string{
				"ETag":         {"abc123"},
				"Content-Type": {"application/json"},
			},
			body: "{\"id\":42,\"name\":\"octo\"}\n",
		},
		"json": {
			doc:     `{"status": 204, "headers": {"X-Request-Id": ["r1"]}}`,
			status:  204,
			headers: map[string][]string{"X-Request-Id": {"r1"}},
		},
		"missing headers become empty": {
			doc:     `status: 404`,
			status:  404,
			headers: map[string][]string{},
		},
		"missing status": {
			doc:     `body: "{}"`,
			wantErr: true,
		},
		"not a document": {
			doc:     `status: [`,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := apiclient.LoadCapture(strings.NewReader(tc.doc))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.status, c.StatusCode())
			assert.Equal(t, tc.headers, c.AllHeaders())
			assert.Equal(t, tc.body, c.Body)
		})
	}
}
