package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FieldError is one entry of the backend's validation errors array. Some
// routes use "msg" instead of "message".
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

func (f FieldError) Text() string {
	if f.Message != "" {
		return f.Message
	}
	return f.Msg
}

// Error is a failed backend call. Status is 0 when no response arrived, in
// which case Cause holds the transport error.
type Error struct {
	Op        string
	Status    int
	Message   string
	ErrorText string
	Errors    []FieldError
	Cause     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("evmarket api: %s: %v", e.Op, e.Cause)
	}
	if d := e.Detail(); d != "" {
		return fmt.Sprintf("evmarket api: %s: status %d: %s", e.Op, e.Status, d)
	}
	return fmt.Sprintf("evmarket api: %s: status %d", e.Op, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Detail is the most specific server text available, checked in the order
// message, error, errors[].
func (e *Error) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	if e.ErrorText != "" {
		return e.ErrorText
	}
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			if t := fe.Text(); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, ". ")
	}
	return ""
}

// IsTimeout reports whether err is a request that ran out of time.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsNetwork reports whether err happened before any HTTP response arrived.
func IsNetwork(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == 0 && !IsTimeout(err)
	}
	var ne net.Error
	return errors.As(err, &ne) && !ne.Timeout()
}
