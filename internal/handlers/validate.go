package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// enumerated is implemented by the models' string enums.
type enumerated interface {
	Valid() bool
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// enum accepts the empty value; pair it with required where needed.
	err := v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumerated)
		return ok && (fl.Field().String() == "" || e.Valid())
	})
	if err != nil {
		panic(err)
	}
	return v
}

// check validates v and turns the first failing field into a ValidationError
// worded by message. field is the JSON name without any slice index.
func check(v any, message func(field, tag string) string) error {
	err := validate.Struct(v)
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		field, _, _ := strings.Cut(errs[0].Field(), "[")
		return invalid(message(field, errs[0].Tag()))
	}
	return err
}
