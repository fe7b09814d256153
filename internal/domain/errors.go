package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRenderFailed         = errors.New("PDF generation failed")
	ErrRenderTimeout        = errors.New("PDF generation timed out")
	ErrInvalidSession       = errors.New("invalid session")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidJSONParameter = errors.New("invalid JSON for parameter")
	ErrMissingParameter     = errors.New("missing required parameter")
	ErrUnexpectedResponse   = errors.New("unexpected response")
)

// APIError is returned for every upstream response outside the 2xx range.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, body)
}
