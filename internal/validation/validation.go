// Package validation wraps go-playground/validator with DDA's field rules.
//
// Struct tags:
//
//	dda_email    ^[^\s@]+@[^\s@]+\.[^\s@]+$
//	dda_phone    ^\+?[1-9]\d{1,14}$ (E.164)
//	dda_picture  https image URL
//	dda_name     text that is still non-empty once markup is stripped
//
// Field names in errors come from the json tag, so they match the API.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/security"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	picturePattern = regexp.MustCompile(`^https://(?:[a-z0-9\-]+\.)+[a-z]{2,6}(?:/[^/#?]+)+(?:\.(?:jpe?g|png))?$`)
)

// Validator validates tagged structs. Safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the dda_* rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, pattern := range map[string]*regexp.Regexp{
		"dda_email":   emailPattern,
		"dda_phone":   phonePattern,
		"dda_picture": picturePattern,
	} {
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tag, matcher(pattern))
	}
	_ = v.RegisterValidation("dda_name", nonEmptyText(security.NewTextSanitizer()))

	return &Validator{validate: v}
}

func matcher(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// nonEmptyText rejects values that the sanitizer reduces to "", such as "<b></b>"
// or whitespace, so a stored name is never empty.
func nonEmptyText(sanitizer security.TextSanitizer) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return sanitizer.Sanitize(fl.Field().String()) != ""
	}
}

// Struct validates s. It returns *model.ValidationError naming only the first
// failing field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &model.ValidationError{Field: fieldErrs[0].Field()}
	}
	return err
}
