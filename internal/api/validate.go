package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var fieldLabels = map[string]string{
	"name":        "Name",
	"apiKey":      "API key",
	"apiUrl":      "API URL",
	"status":      "Status",
	"description": "Description",
	"rateLimit":   "Rate limit",
	"timeout":     "Timeout",
	"id":          "ID",
	"email":       "Email",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks v's validate tags and returns a *ValidationError keyed by
// JSON field name
func Validate(v any) error {
	return toValidationError(validate.Struct(v))
}

func validatePartial(v any, fields ...string) error {
	return toValidationError(validate.StructPartial(v, fields...))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fieldMessage(fe)
	}
	return out
}

// fieldMessage renders a validator failure the way the provider form shows it
func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "url":
		return "Must be a valid URL"
	case "email":
		return "Must be a valid email"
	case "oneof":
		return "Invalid " + strings.ToLower(label)
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, fe.Tag())
	}
}
