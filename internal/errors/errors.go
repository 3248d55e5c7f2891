package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when a required field is missing or a reference is unknown.
	ErrValidation = errors.New("validation failed")
	// ErrUniquenessViolation is returned when a unique field collides with an existing row.
	ErrUniquenessViolation = errors.New("uniqueness violation")
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername is returned when registering a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when registering a taken email.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrTokenMissing is returned when a request carries no token.
	ErrTokenMissing = errors.New("token is missing")
	// ErrTokenMalformed is returned when a token cannot be verified or its user cannot be resolved.
	ErrTokenMalformed = errors.New("token is invalid")
	// ErrTokenExpired is returned when the token expiration instant has passed.
	ErrTokenExpired = errors.New("token has expired")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
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
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Client errors keep the
// wrapped message; anything unrecognised becomes an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrDuplicateUsername):
		return NewHTTPError(http.StatusBadRequest, ErrDuplicateUsername.Error(), "DUPLICATE_USERNAME")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusBadRequest, ErrDuplicateEmail.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrUniquenessViolation):
		return NewHTTPError(http.StatusConflict, err.Error(), "UNIQUENESS_VIOLATION")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenMissing):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenMissing.Error(), "TOKEN_MISSING")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenExpired.Error(), "TOKEN_EXPIRED")
	case errors.Is(err, ErrTokenMalformed):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenMalformed.Error(), "TOKEN_INVALID")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
