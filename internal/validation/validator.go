package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const MinYear = 1900

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func New() *Validator {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Validator {
	v := validator.New()
	out := &Validator{v: v, now: now}

	// Field errors are keyed by the name the browser posts, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	})

	phoneRegex := regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return phoneRegex.MatchString(strings.ReplaceAll(value, " ", ""))
	})

	v.RegisterValidation("year", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
		default:
			return false
		}
		year := int(fl.Field().Int())
		return year >= MinYear && year <= out.now().Year()
	})

	return out
}

// RegisterCustomType lets value types such as calendar dates validate through
// their string form.
func (v *Validator) RegisterCustomType(fn validator.CustomTypeFunc, types ...interface{}) {
	v.v.RegisterCustomTypeFunc(fn, types...)
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok {
		return ve
	}
	return nil
}

// Messages renders validation errors as one human-readable message per field.
func (v *Validator) Messages(err error) map[string]string {
	errs := v.ValidationErrors(err)
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = v.message(fe)
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "url", "http_url":
		return "Enter a valid URL"
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be %s or more", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be %s or less", fe.Param())
	case "gtefield":
		return fmt.Sprintf("Must not be less than %s", humanField(fe.Param()))
	case "oneof":
		return "Choose one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "year":
		return fmt.Sprintf("Must be a year between %d and %d", MinYear, v.now().Year())
	case "date":
		return "Enter a valid date"
	case "phone":
		return "Enter a valid phone number"
	default:
		return "Invalid value"
	}
}

// humanField turns a Go field name such as StartYear into "start year".
func humanField(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
