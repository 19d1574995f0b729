package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnauthorized marks a 401 response from any endpoint.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx response carrying the backend's message
// when one was provided.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// newStatusError drains the body looking for a {"message": ...}
// payload, the shape the backend uses for errors.
func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || len(body) == 0 {
		return se
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		se.Message = payload.Message
	}
	return se
}

// ServerMessage extracts the backend-provided message from an error
// chain, or returns "" when none is available.
func ServerMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
