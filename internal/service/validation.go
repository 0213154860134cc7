package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// reservedUsernames collide with routes under /users/.
var reservedUsernames = map[string]bool{"me": true}

// Validator returns the shared validator with the custom "username" rule.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidUsername(fl.Field().String())
		})
	})
	return validate
}

// ValidUsername reports whether name is an acceptable username.
func ValidUsername(name string) bool {
	return name != "" &&
		len(name) <= 150 &&
		!reservedUsernames[strings.ToLower(name)] &&
		usernamePattern.MatchString(name)
}

// validateStruct returns a *ValidationError for the first failing field.
func validateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return invalid(fieldPath(fe), "%s", describe(fe))
	}
	return invalid("body", "%v", err)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "unique":
		return "must not contain duplicates"
	case "email":
		return "must be a valid email address"
	case "username":
		return "invalid username"
	}
	return "failed " + fe.Tag() + " validation"
}
