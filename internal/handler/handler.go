// Package handler is the HTTP boundary: request parsing, validation, and
// response shaping around the domain services.
package handler

import (
	"net/http"
	"strconv"

	"campushire/internal/apperr"
	"campushire/internal/middleware"
	"campushire/internal/principal"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo's Validator interface
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		details := make([]string, 0)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				details = append(details, fe.Field()+" failed on "+fe.Tag())
			}
		}
		return apperr.Validation("validation failed").WithDetails(details...)
	}
	return nil
}

// respondError serializes the error taxonomy uniformly; unknown errors
// become opaque 500s.
func respondError(c echo.Context, err error) error {
	appErr := apperr.From(err)
	body := echo.Map{"error": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.JSON(appErr.Status, body)
}

// bindAndValidate parses the body and runs struct validation
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request body")
	}
	return c.Validate(req)
}

// callerPrincipal returns the principal set by the auth middleware
func callerPrincipal(c echo.Context) (principal.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return principal.Principal{}, apperr.Authentication("authentication required")
	}
	return p, nil
}

// paramID parses a numeric path parameter
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter
func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func ok(c echo.Context, body interface{}) error {
	return c.JSON(http.StatusOK, body)
}

func created(c echo.Context, body interface{}) error {
	return c.JSON(http.StatusCreated, body)
}
