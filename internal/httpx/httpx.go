package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError answers requests that are not page loads, such as health checks
// and rejected websocket upgrades.
func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

var (
	ErrInvalidPage  = errors.New("invalid page")
	ErrInvalidLimit = errors.New("invalid limit")
)

// ParsePageLimit reads page/limit query params. Missing values take the
// defaults; limit is capped at maxLimit.
func ParsePageLimit(values url.Values, defaultLimit, maxLimit int) (int, int, error) {
	page := 1
	limit := defaultLimit

	rawPage := strings.TrimSpace(values.Get("page"))
	if rawPage != "" {
		parsed, err := strconv.Atoi(rawPage)
		if err != nil || parsed <= 0 {
			return 0, 0, ErrInvalidPage
		}
		page = parsed
	}

	rawLimit := strings.TrimSpace(values.Get("limit"))
	if rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			return 0, 0, ErrInvalidLimit
		}
		limit = parsed
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit, nil
}
