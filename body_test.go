package apiclient_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/apiclient"
	"github.com/bjaus/apiclient/apiclienttest"
)

func TestBodyString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body   string
		expect string
	}{
		"json object": {
			body:   `{"id":42,"name":"octo"}`,
			expect: `{"id":42,"name":"octo"}`,
		},
		"empty body": {
			body:   "",
			expect: "",
		},
		"multibyte utf-8": {
			body:   "héllo wörld ✓",
			expect: "héllo wörld ✓",
		},
		"invalid utf-8 is replaced": {
			body:   "ab\xffcd",
			expect: "ab�cd",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cr := apiclienttest.NewResponse(http.StatusOK, tc.body)
			got, err := apiclient.BodyString(cr)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
			assert.Equal(t, 1, cr.Opened())
			assert.Equal(t, 1, cr.Closes())
		})
	}
}

func TestBodyString_read_error_closes_stream(t *testing.T) {
	t.Parallel()

	ioErr := errors.New("connection reset")
	cr := apiclienttest.NewResponse(http.StatusOK, "ignored", apiclienttest.WithReadError(ioErr))

	got, err := apiclient.BodyString(cr)
	require.ErrorIs(t, err, apiclient.ErrRead)
	require.ErrorIs(t, err, ioErr)
	assert.Empty(t, got)
	assert.Equal(t, 1, cr.Closes())

	var re *apiclient.ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ioErr, re.Cause)
}

func TestBodyString_close_error(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("close failed")
	cr := apiclienttest.NewResponse(http.StatusOK, "data", apiclienttest.WithCloseError(closeErr))

	got, err := apiclient.BodyString(cr)
	require.ErrorIs(t, err, apiclient.ErrRead)
	require.ErrorIs(t, err, closeErr)
	assert.Empty(t, got)
}

func TestBodyString_read_error_wins_over_close_error(t *testing.T) {
	t.Parallel()

	readErr := errors.New("read failed")
	closeErr := errors.New("close failed")
	cr := apiclienttest.NewResponse(http.StatusOK, "data",
		apiclienttest.WithReadError(readErr),
		apiclienttest.WithCloseError(closeErr),
	)

	_, err := apiclient.BodyString(cr)
	require.ErrorIs(t, err, readErr)
	assert.NotErrorIs(t, err, closeErr)
}

func TestBodyString_nil_cases(t *testing.T) {
	t.Parallel()

	_, err := apiclient.BodyString(nil)
	require.ErrorIs(t, err, apiclient.ErrNilResponse)

	_, err = apiclient.BodyString(apiclienttest.NewResponse(http.StatusOK, "", apiclienttest.WithNilBody()))
	require.ErrorIs(t, err, apiclient.ErrNilBody)
	assert.NotErrorIs(t, err, apiclient.ErrRead)
}

func TestBodyString_reads_once(t *testing.T) {
	t.Parallel()

	cr := apiclienttest.NewResponse(http.StatusOK, "once")

	first, err := apiclient.BodyString(cr)
	require.NoError(t, err)
	assert.Equal(t, "once", first)

	_, err = apiclient.BodyString(cr)
	require.ErrorIs(t, err, apiclient.ErrRead)
	require.ErrorIs(t, err, apiclient.ErrBodyConsumed)
	assert.Equal(t, 1, cr.Closes())
}

func TestTryBodyString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cr     apiclient.ConnectorResponse
		expect string
		ok     bool
	}{
		"success": {
			cr:     apiclienttest.NewResponse(http.StatusOK, "body"),
			expect: "body",
			ok:     true,
		},
		"empty body is still ok": {
			cr: apiclienttest.NewResponse(http.StatusOK, ""),
			ok: true,
		},
		"read failure": {
			cr: apiclienttest.NewResponse(http.StatusOK, "x", apiclienttest.WithReadError(errors.New("boom"))),
		},
		"nil stream": {
			cr: apiclienttest.NewResponse(http.StatusOK, "", apiclienttest.WithNilBody()),
		},
		"nil response": {
			cr: nil,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := apiclient.TryBodyString(tc.cr)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expect, got)
		})
	}
}
