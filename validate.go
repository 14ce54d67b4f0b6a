package liqpay

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, ok := toDecimal(fl.Field().Interface())
		return ok && d.IsPositive()
	}); err != nil {
		panic(err)
	}

	if err := v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return slices.Contains(strings.Fields(fl.Param()), value)
	}); err != nil {
		panic(err)
	}

	return v
}

// checkRequirements evaluates reqs in order and reports the first failure.
func checkRequirements(params Params, reqs []requirement) error {
	for _, req := range reqs {
		value, ok := params[req.field]
		if !ok || value == nil {
			return newValidationError(req.field, "is required")
		}
		if err := validate.Var(scalar(value), req.tag); err != nil {
			return newValidationError(req.field, normalizeValidationError(err))
		}
	}
	return nil
}

// scalar flattens struct-typed numbers so validator applies tags to them
// instead of descending into their fields.
func scalar(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return v
}

// validateStruct runs the struct-level validator rules on v.
func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		first := validationErrs[0]
		return newValidationError(jsonPath(first), validationMessage(first))
	}
	return nil
}

func normalizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}
	return validationMessage(validationErrs[0])
}

func jsonPath(fe validator.FieldError) string {
	path := fe.Namespace()
	if idx := strings.Index(path, "."); idx >= 0 {
		path = path[idx+1:]
	}
	if path == "" {
		return fe.Field()
	}
	return path
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "amount":
		return "must be a number greater than 0"
	case "currency":
		return fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
