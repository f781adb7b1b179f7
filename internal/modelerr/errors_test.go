package modelerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_Retriable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "transport failure", status: 0, want: true},
		{name: "rate limited", status: http.StatusTooManyRequests, want: true},
		{name: "server error", status: http.StatusInternalServerError, want: true},
		{name: "bad gateway", status: http.StatusBadGateway, want: true},
		{name: "not found", status: http.StatusNotFound, want: false},
		{name: "bad request", status: http.StatusBadRequest, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &Error{Op: "embed", Model: "m", StatusCode: tt.status}
			if got := err.Retriable(); got != tt.want {
				t.Errorf("Retriable() = %v, want %v", got, tt.want)
			}
			if got := IsRetriable(err); got != tt.want {
				t.Errorf("IsRetriable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap("embed", "m", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}

	err := Wrap("embed", "m", context.DeadlineExceeded)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("deadline should map to ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("wrapped error should keep its cause")
	}

	canceled := Wrap("embed", "m", context.Canceled)
	if errors.Is(canceled, ErrUnavailable) {
		t.Error("cancellation should not be reported as unavailable")
	}
}

func TestError_Message(t *testing.T) {
	err := FromStatus("summarize", "llama3", 503, "overloaded")
	want := "summarize with llama3 failed (status 503): overloaded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("building index: %w", err)
	if !IsRetriable(wrapped) {
		t.Error("retriable errors should survive wrapping")
	}
}
