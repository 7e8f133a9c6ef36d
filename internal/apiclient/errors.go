package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrNotFound = errors.New("resource not found")

// APIError is a non-2xx answer from the API. Message is the server-provided
// text when the payload carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status=%d", e.Status)
	}
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// MessageOr returns the server message carried by err, or fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

type errorPayload struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
	Data    *struct {
		Message string `json:"message"`
	} `json:"data"`
}

func parseError(status int, body []byte) *APIError {
	out := &APIError{Status: status}
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Data != nil && payload.Data.Message != "":
			out.Message = payload.Data.Message
		case payload.Message != "":
			out.Message = payload.Message
		default:
			if s, ok := payload.Error.(string); ok {
				out.Message = s
			}
		}
	}
	return out
}
