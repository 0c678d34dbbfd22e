// Package validation runs the client-side form checks that must pass
// before any request reaches the backend.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

var postalCodeRe = regexp.MustCompile(`^[0-9]{4,5}$`)

// Validator wraps go-playground/validator and reports failures as a
// *domain.ValidationError keyed by JSON field name. It also satisfies
// echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return toSnake(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
		return postalCodeRe.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates i. It returns nil or a *domain.ValidationError.
func (cv *Validator) Struct(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &domain.ValidationError{}
	for _, fe := range ve {
		out.Add(fe.Field(), fieldError(fe))
	}
	return out
}

// Validate satisfies the echo.Validator interface.
func (cv *Validator) Validate(i any) error {
	return cv.Struct(i)
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "postalcode":
		return field + " must be 4 or 5 digits"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be later than %s", field, strings.ReplaceAll(toSnake(fe.Param()), "_", " "))
	case "eqfield":
		return fmt.Sprintf("%s does not match %s", field, strings.ToLower(fe.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
