package errors

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/errors"
)

// ErrorList carries the server's `errors` payload, which arrives either as a
// single string or as a list of strings depending on the endpoint.
type ErrorList []string

// UnmarshalJSON accepts both `"errors": "msg"` and `"errors": ["a", "b"]`.
func (l *ErrorList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = ErrorList{single}

		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = ErrorList(many)

	return nil
}

// APIError represents a non-2xx response from the API, normalized from the
// error envelope `{ "errors": string | [string] }`.
type APIError struct {
	StatusCode int
	Errors     ErrorList
}

// NewAPIError builds an APIError from a status code and the raw error list.
func NewAPIError(statusCode int, errs ErrorList) *APIError {
	return &APIError{StatusCode: statusCode, Errors: errs}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.DisplayMessage()
}

// DisplayMessage joins the server's error messages into a single displayable
// string, falling back to the HTTP status text when the envelope was empty.
func (e *APIError) DisplayMessage() string {
	if len(e.Errors) == 0 {
		return http.StatusText(e.StatusCode)
	}

	return strings.Join(e.Errors, ", ")
}

// HTTPCode returns the HTTP status code
func (e *APIError) HTTPCode() int {
	return e.StatusCode
}

// ErrorCode returns the business error code
func (e *APIError) ErrorCode() string {
	return "API_ERROR"
}

// Message returns the user-friendly error message
func (e *APIError) Message() string {
	return e.DisplayMessage()
}

// Details returns detailed error information
func (e *APIError) Details() string {
	return strings.Join(e.Errors, "\n")
}

// Normalize extracts a single displayable message from any error: the joined
// server messages for an APIError, the predefined message for an AppError,
// otherwise the plain error text.
func Normalize(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.DisplayMessage()
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}

	return err.Error()
}
