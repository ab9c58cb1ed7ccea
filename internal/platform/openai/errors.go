package openai

import (
	"errors"
	"fmt"
)

var ErrEmptyCompletion = errors.New("no completion text returned")

// TransportError wraps network level failures (dial, TLS, timeouts, cancelled context).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "openai transport error"
	}
	return "openai transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "openai http error"
	}
	return fmt.Sprintf("openai http %d", e.StatusCode)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// DecodeError is returned when a 2xx body is not valid JSON.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	if e == nil || e.Err == nil {
		return "openai decode error"
	}
	return "openai decode error: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EmptyCompletionError carries the decoded payload that had no usable text.
type EmptyCompletionError struct {
	Payload any
}

func (e *EmptyCompletionError) Error() string { return ErrEmptyCompletion.Error() }

func (e *EmptyCompletionError) Is(target error) bool { return target == ErrEmptyCompletion }
