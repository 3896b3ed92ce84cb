package errs

import (
	"net/http"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// Supports extra payload:
//   - code: optional custom code string (nil defaults to "BAD_REQUEST")
//   - fieldErrors: optional slice of field-level validation errors
func NewBadRequestError(message string, code *string, fieldErrors []FieldError) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:        formattedCode,
		Message:     message,
		Status:      http.StatusBadRequest,
		Operational: true,
		Errors:      fieldErrors,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
//
// The optional code distinguishes the token failure kinds the client
// may want to react to ("INVALID_TOKEN", "EXPIRED_TOKEN", "STALE_TOKEN").
func NewUnauthorizedError(message string, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusUnauthorized))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:        formattedCode,
		Message:     message,
		Status:      http.StatusUnauthorized,
		Operational: true,
	}
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string) *HTTPError {
	return &HTTPError{
		Code:        MakeUpperCaseWithUnderscores(http.StatusText(http.StatusForbidden)),
		Message:     message,
		Status:      http.StatusForbidden,
		Operational: true,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return &HTTPError{
		Code:        MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound)),
		Message:     message,
		Status:      http.StatusNotFound,
		Operational: true,
	}
}

// NewConflictError creates a 409 Conflict HTTPError, used for
// uniqueness violations (duplicate tour name, second review for the
// same tour by the same author, already-registered email).
func NewConflictError(message string, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusConflict))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:        formattedCode,
		Message:     message,
		Status:      http.StatusConflict,
		Operational: true,
	}
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError,
// returned by the rate limiter.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:        MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)),
		Message:     message,
		Status:      http.StatusTooManyRequests,
		Operational: true,
	}
}

// NewInternalServerError creates a 500 HTTPError.
//
// The message is the generic status text, never the real internal error:
// clients should not see stack traces or driver messages. The original
// error stays with the caller for logging.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:        MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:     "Something went very wrong!",
		Status:      http.StatusInternalServerError,
		Operational: false,
	}
}
