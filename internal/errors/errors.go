package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrForbidden is returned when the actor may not perform the operation on the target.
	ErrForbidden = errors.New("this action is unauthorized")
	// ErrClientNotFound is returned when a client is not found.
	ErrClientNotFound = errors.New("client not found")
	// ErrManagerNotFound is returned when a manager is not found.
	ErrManagerNotFound = errors.New("manager not found")
	// ErrIntegrity is returned when a multi-statement change could not be committed atomically.
	ErrIntegrity = errors.New("the change could not be applied")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrUnauthenticated is returned when the request carries no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// FieldError builds a ValidationError holding a single message.
func FieldError(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// Has reports whether field already has a message.
func (v *ValidationError) Has(field string) bool {
	return len(v.Fields[field]) > 0
}

// Empty reports whether no field has been rejected.
func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// OrNil returns v when it holds messages and nil otherwise, so callers can
// return it straight as an error.
func (v *ValidationError) OrNil() error {
	if v == nil || v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a
// generic 500 and the second return value is false so the caller can log them.
func MapErrorToHTTP(err error) (*HTTPError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		httpErr := NewHTTPError(http.StatusUnprocessableEntity, "the given data was invalid", "VALIDATION_ERROR")
		httpErr.Fields = ve.Fields
		return httpErr, true
	}

	switch {
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN"), true
	case errors.Is(err, ErrClientNotFound):
		return NewHTTPError(http.StatusNotFound, ErrClientNotFound.Error(), "CLIENT_NOT_FOUND"), true
	case errors.Is(err, ErrManagerNotFound):
		return NewHTTPError(http.StatusNotFound, ErrManagerNotFound.Error(), "MANAGER_NOT_FOUND"), true
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS"), true
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidRefreshToken.Error(), "INVALID_REFRESH_TOKEN"), true
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED"), true
	case errors.Is(err, ErrIntegrity):
		// Logged by the caller; the client only learns that nothing was applied.
		return NewHTTPError(http.StatusInternalServerError, ErrIntegrity.Error(), "INTEGRITY_FAILURE"), false
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR"), false
	}
}
