package apiclient

import (
	"errors"
	"fmt"
)

// Sentinel errors for response extraction and decoding.
var (
	ErrRead         = errors.New("read body")
	ErrDecode       = errors.New("decode body")
	ErrNilResponse  = errors.New("nil connector response")
	ErrNilBody      = errors.New("nil body stream")
	ErrNilInstance  = errors.New("nil instance to update")
	ErrBodyConsumed = errors.New("body stream already consumed")
)

// StatusCoder is implemented by values that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ReadError reports an I/O failure while reading or closing a body stream.
type ReadError struct {
	Cause error
}

// Error returns the read failure message.
func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", ErrRead, e.Cause)
}

// Unwrap returns the underlying I/O error.
func (e *ReadError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrRead.
func (e *ReadError) Is(target error) bool { return target == ErrRead }

// DecodeError reports a body that could not be decoded into the target shape.
// ID matches the decode_id attribute of the diagnostic log record.
type DecodeError struct {
	ID          string
	ContentType string
	Body        string
	Cause       error
}

// Error returns the decode failure message. The raw body is left out; it is
// available on the Body field and in the diagnostic log.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrDecode, e.ContentType, e.Cause)
}

// Unwrap returns the codec error.
func (e *DecodeError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
