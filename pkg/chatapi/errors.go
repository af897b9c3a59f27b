package chatapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AuthError means the backend rejected the credential (bad login, expired or
// invalid token). Any authenticated call can return it; callers are expected
// to treat it as a forced logout.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "authentication failed"
	}
	return e.Detail
}

// ValidationError is raised client-side for invalid input, before any network
// call is made.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// ConflictError means the backend refused a registration because the email is
// already in use. Detail carries the backend message verbatim.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string { return e.Detail }

// NetworkError wraps a transport-level failure (connection refused, timeout).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// UploadError means the file endpoint rejected or failed an upload. It never
// blocks the text-send path; callers attach it to the message as an annotation.
type UploadError struct {
	Detail string
}

func (e *UploadError) Error() string { return e.Detail }

// APIError is any other non-2xx response. Detail is the backend's message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error %d", e.StatusCode)
}

// detailBody matches FastAPI's error envelope.
type detailBody struct {
	Detail string `json:"detail"`
}

// errorDetail extracts the user-facing message from an error response body.
// Non-JSON bodies are treated as opaque error strings.
func errorDetail(body []byte) string {
	var d detailBody
	if err := json.Unmarshal(body, &d); err == nil && d.Detail != "" {
		return d.Detail
	}
	return strings.TrimSpace(string(body))
}

// errorFromStatus maps a non-2xx response to the client error taxonomy.
func errorFromStatus(status int, body []byte) error {
	detail := errorDetail(body)
	switch status {
	case 401, 403:
		return &AuthError{Detail: detail}
	case 409:
		return &ConflictError{Detail: detail}
	default:
		return &APIError{StatusCode: status, Detail: detail}
	}
}
