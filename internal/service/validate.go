package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-trainer/internal/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateInput checks the validate tags of an input struct. The first
// failing field is reported as a *domain.ValidationError wrapping
// domain.ErrValidation.
func validateInput(input any) error {
	err := inputValidator().Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(
			strings.ToLower(fe.Field()),
			describe(fe),
			domain.ErrValidation,
		)
	}
	return domain.NewValidationError("", err.Error(), domain.ErrValidation)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s long", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
