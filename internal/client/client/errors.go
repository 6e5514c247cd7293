package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated: no valid local token for a protected call.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrUnauthorized: the server rejected the token (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials: the login was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRequestFailed: any other non-2xx response.
	ErrRequestFailed = errors.New("request failed")
	// ErrNetwork: no response was received.
	ErrNetwork = errors.New("network error")
	// ErrTimeout: polling exceeded its budget.
	ErrTimeout = errors.New("timed out")
	// ErrValidation: input rejected before submission.
	ErrValidation = errors.New("validation error")
)

// RequestError is a non-2xx response. Message is the server-provided detail
// when there was one.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}
