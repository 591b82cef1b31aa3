package eway

import (
	"errors"
	"fmt"
)

// APIError is returned when the gateway answers with an unexpected HTTP status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eway api error (status: %d): %s", e.StatusCode, e.Body)
}

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
