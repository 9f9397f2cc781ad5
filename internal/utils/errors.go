package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error with the HTTP status it should be reported as.
type APIError struct {
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Code: %d, Message: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// New returns an APIError with the given status and message.
func New(code int, message string) error {
	return &APIError{Code: code, Message: message}
}

// Wrap returns an APIError carrying err as its cause.
func Wrap(code int, message string, err error) error {
	return &APIError{Code: code, Message: message, Err: err}
}

// StatusOf returns the HTTP status and client-facing message for err.
// Errors that are not APIErrors are reported as 500 without detail.
func StatusOf(err error) (int, string) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Code, ae.Message
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
