// Package validation checks the shape of input structs with
// go-playground/validator and reports failures per JSON field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "clientdesk/internal/errors"
	"clientdesk/internal/model"
)

// Validator wraps go-playground/validator. It also satisfies echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that names fields by their json tag and knows the
// "role" tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
	return &Validator{v: v}
}

// Check validates s and returns the per-field failures, or an empty
// ValidationError when s is valid.
func (val *Validator) Check(s any) *apperrors.ValidationError {
	out := apperrors.NewValidationError()
	err := val.v.Struct(s)
	if err == nil {
		return out
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out.Add("_", err.Error())
		return out
	}
	for _, fe := range ve {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// Validate satisfies the echo.Validator interface.
func (val *Validator) Validate(i any) error {
	return val.Check(i).OrNil()
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s may not be greater than %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "eqfield":
		return field + " confirmation does not match"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "role":
		return fmt.Sprintf("the selected %s is invalid", field)
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
