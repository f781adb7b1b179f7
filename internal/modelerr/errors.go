// Package modelerr defines the errors shared by the external model clients.
package modelerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable indicates that a model backend could not serve a request.
// Callers should treat it as transient and retry later.
var ErrUnavailable = errors.New("model unavailable")

// Error represents a failed call to an embedding or summarization backend.
type Error struct {
	Op         string // e.g. "embed", "summarize"
	Model      string
	StatusCode int // HTTP status, 0 when the request never completed
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s with %s failed (status %d): %s", e.Op, e.Model, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s with %s failed: %s", e.Op, e.Model, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports retriable model errors as ErrUnavailable so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	return target == ErrUnavailable && e.Retriable()
}

// Retriable reports whether retrying the same request may succeed.
func (e *Error) Retriable() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= http.StatusInternalServerError
}

// Wrap builds an Error for a transport-level failure (timeout, refused
// connection, decode failure). Cancellation by the caller is returned as is.
func Wrap(op, model string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &Error{Op: op, Model: model, Err: err}
}

// FromStatus builds an Error for a non-200 HTTP response.
func FromStatus(op, model string, status int, body string) error {
	return &Error{Op: op, Model: model, StatusCode: status, Message: body}
}

// IsRetriable returns true if err is a model error worth retrying.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
