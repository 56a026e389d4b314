package handler

import (
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/pkg/validate"
)

// echoValidator lets handlers call c.Validate(req) with the shared rule set.
type echoValidator struct{}

// NewValidator returns an echo.Validator backed by internal/pkg/validate.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface. Failures are domain
// validation errors so the error handler answers 400.
func (echoValidator) Validate(i any) error {
	if err := validate.Struct(i); err != nil {
		return &domain.ValidationError{Msg: err.Error()}
	}
	return nil
}
