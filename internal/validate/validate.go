package validate

import (
	"reflect"
	"strings"
	"unicode"

	"tutorconnect/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	// Report fields by their JSON/form name so clients can map errors to inputs.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	_ = val.RegisterValidation("singleline", singleLine)
	return val
}

// singleLine rejects control characters in values that end up in headers.
func singleLine(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsControl) < 0
}

// Struct validates s using its `validate` tags and returns an
// *apperr.ValidationError keyed by field name, or nil.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := apperr.NewValidation()
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out.OrNil()
}

// message returns a user-friendly error message
func message(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + unit
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + unit
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "eqfield":
		return "Passwords don't match"
	case "singleline":
		return fe.Field() + " must not contain line breaks or control characters"
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fe.Field() + " is invalid"
	}
}
