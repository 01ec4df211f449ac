// Package validator wraps go-playground/validator with JSON field names and
// readable messages.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Get returns the shared validator instance.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks s against its validate tags and joins the failures into one error.
func Validate(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return eris.Wrap(err, "validate")
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s %s", e.Field(), message(e)))
	}
	return eris.New(strings.Join(messages, "; "))
}

// Echo adapts Validate to echo.Validator so handlers can call c.Validate.
type Echo struct{}

func (Echo) Validate(i any) error {
	return Validate(i)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s items", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
