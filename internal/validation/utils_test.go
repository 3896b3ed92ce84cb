package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailbook-app/trailbook/internal/errs"
)

type signupPayload struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (p *signupPayload) Validate() error { return Struct(p) }

func bindJSON(t *testing.T, body string, payload Validatable) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	return BindAndValidate(c, payload)
}

func TestBindAndValidateSuccess(t *testing.T) {
	payload := &signupPayload{}
	err := bindJSON(t, `{"name":"Ada","email":"ada@example.com","password":"pass1234","password_confirm":"pass1234"}`, payload)

	require.NoError(t, err)
	assert.Equal(t, "Ada", payload.Name)
}

func TestBindAndValidateMalformedBody(t *testing.T) {
	err := bindJSON(t, `{"name":`, &signupPayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Invalid request body", httpErr.Message)
}

func TestBindAndValidateFieldErrors(t *testing.T) {
	err := bindJSON(t, `{"email":"not-an-email","password":"short","password_confirm":"other"}`, &signupPayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	require.NotEmpty(t, httpErr.Errors)

	byField := make(map[string]string)
	for _, fe := range httpErr.Errors {
		byField[fe.Field] = fe.Error
	}

	assert.Equal(t, "is required", byField["name"])
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "must be at least 8 characters", byField["password"])
	assert.Equal(t, "must match password", byField["passwordconfirm"])
}

func TestExtractCustomValidationErrors(t *testing.T) {
	custom := CustomValidationErrors{
		{Field: "price_discount", Message: "must be below the price"},
	}

	msg, fieldErrors := extractValidationError(custom)

	assert.Equal(t, "Validation failed", msg)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "price_discount", fieldErrors[0].Field)
}
