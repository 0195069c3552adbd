package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	sessionExpiredMessage = "Your session has expired. Please log in again."
	genericFailureMessage = "Request failed. Please try again."
)

var (
	// ErrSessionExpired is returned for any 401 on an authenticated call.
	// The session has already been torn down when the caller sees it.
	ErrSessionExpired = errors.New(sessionExpiredMessage)

	ErrMissingBaseURL = errors.New("missing API base URL")
)

// RequestError is a failed call that did not expire the session:
// a network failure or a non-2xx, non-401 response.
type RequestError struct {
	Method   string
	Endpoint string
	Status   int // 0 for network failures
	Message  string
	Err      error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Detail includes the endpoint and status, for logs
func (e *RequestError) Detail() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s %s (status %d): %s", e.Method, e.Endpoint, e.Status, e.Message)
}

// errorMessage extracts the human-readable message from a backend error body
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return genericFailureMessage
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}
	return genericFailureMessage
}

// UserMessage returns the text to show the user for an API error
func UserMessage(err error) string {
	if errors.Is(err, ErrSessionExpired) {
		return sessionExpiredMessage
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return genericFailureMessage
}
