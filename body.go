package apiclient

import (
	"io"
	"strings"
	"unicode/utf8"
)

// BodyString reads the whole body stream of cr as UTF-8 text and closes it.
// The stream is closed on every path. I/O failures, including a failed close
// after a complete read, are returned as *ReadError.
func BodyString(cr ConnectorResponse) (text string, err error) {
	if cr == nil {
		return "", ErrNilResponse
	}

	rc, err := cr.BodyStream()
	if err != nil {
		return "", &ReadError{Cause: err}
	}
	if rc == nil {
		return "", ErrNilBody
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			text, err = "", &ReadError{Cause: closeErr}
		}
	}()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", &ReadError{Cause: err}
	}
	if !utf8.Valid(b) {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError)), nil
	}
	return string(b), nil
}

// TryBodyString is the best-effort form of BodyString for diagnostics. Any
// failure, including a nil response or a nil stream, yields ("", false).
func TryBodyString(cr ConnectorResponse) (string, bool) {
	text, err := BodyString(cr)
	if err != nil {
		return "", false
	}
	return text, true
}
