package errs

import "strings"

// FieldError is a field-level validation failure.
//
// Example:
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error type every handler, service and repository
// ultimately funnels into the global error handler.
//
// Fields:
//   - Code: machine-friendly code derived from the HTTP status text
//     (e.g. "NOT_FOUND") unless a caller supplies a custom one.
//   - Message: human-friendly message rendered to the client.
//   - Status: HTTP status code.
//   - Operational: true for expected, user-facing failures. Anything
//     non-operational renders as a generic 500 outside development.
//   - Errors: optional per-field validation errors.
type HTTPError struct {
	Code        string       `json:"code"`
	Message     string       `json:"message"`
	Status      int          `json:"status"`
	Operational bool         `json:"-"`
	Errors      []FieldError `json:"errors,omitempty"`
}

// Error satisfies the built-in error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError, so that
// errors.Is(err, &HTTPError{}) matches on type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// EnvelopeStatus returns the response envelope status word for this
// error: "fail" for client faults (4xx), "error" otherwise.
func (e *HTTPError) EnvelopeStatus() string {
	if e.Status >= 400 && e.Status < 500 {
		return "fail"
	}
	return "error"
}

// MakeUpperCaseWithUnderscores converts a phrase into an
// UPPER_CASE_WITH_UNDERSCORES code, e.g. "Bad Request" -> "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
