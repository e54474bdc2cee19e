package handlers

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

var validate = validator.New()

// validateStruct maps validator failures onto the Validation error shape.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	details := map[string]any{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return apperrors.NewValidationError("invalid payload", details)
}
