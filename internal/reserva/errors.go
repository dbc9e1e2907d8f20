package reserva

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx answer from the Reserva backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("reserva API returned %d", e.Status)
	}
	return fmt.Sprintf("reserva API returned %d: %s", e.Status, e.Message)
}

// MessageOr returns the backend's message carried by err, or fallback when
// err is not an APIError or the backend sent no message.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
