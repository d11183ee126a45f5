// Package handler contains the HTTP surface: request DTOs, cookie
// plumbing and the translation of flow errors into responses.
package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/spaps/rental-backend/internal/apperr"
)

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks struct tags and reports failures as Validation errors
// so they surface as 400s rather than 500s.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

// bind decodes and validates the request body in one step.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("malformed request body")
	}
	return c.Validate(dst)
}
