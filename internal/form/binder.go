package form

import (
	"net/url"
	"reflect"
	"strings"

	"bssaj-admin/internal/validation"

	playform "github.com/go-playground/form/v4"
)

var dateType = reflect.TypeOf(Date{})

// Binder decodes posted values into a typed form struct and validates it.
type Binder struct {
	decoder   *playform.Decoder
	validator *validation.Validator
}

func NewBinder(v *validation.Validator) *Binder {
	dec := playform.NewDecoder()
	dec.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		return ParseDate(vals[0])
	}, Date{})

	// Dates validate through their input form so required and date tags apply.
	v.RegisterCustomType(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Date); ok {
			return d.String()
		}
		return nil
	}, Date{})

	return &Binder{decoder: dec, validator: v}
}

// Bind fills dst (a pointer to a form struct) from values and returns one
// message per invalid field, or nil when the form is valid.
func (b *Binder) Bind(values url.Values, dst any) map[string]string {
	errs := b.Decode(values, dst)
	return Merge(errs, b.Validate(dst))
}

// Decode fills dst and reports values that could not be parsed, such as a
// malformed number or date.
func (b *Binder) Decode(values url.Values, dst any) map[string]string {
	err := b.decoder.Decode(dst, values)
	if err == nil {
		return nil
	}
	errs := make(map[string]string)
	if decodeErrs, ok := err.(playform.DecodeErrors); ok {
		for name := range decodeErrs {
			errs[name] = decodeMessage(dst, name)
		}
	} else {
		errs[""] = "Could not read the submitted form"
	}
	return errs
}

// Validate runs the struct rules of dst.
func (b *Binder) Validate(dst any) map[string]string {
	return b.validator.Messages(b.validator.Struct(dst))
}

// Merge keeps the first message per field; nil when both are empty.
func Merge(first, second map[string]string) map[string]string {
	if len(first) == 0 && len(second) == 0 {
		return nil
	}
	out := make(map[string]string, len(first)+len(second))
	for k, v := range first {
		out[k] = v
	}
	for k, v := range second {
		if _, seen := out[k]; !seen {
			out[k] = v
		}
	}
	return out
}

func decodeMessage(dst any, name string) string {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return "Invalid value"
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if strings.SplitN(f.Tag.Get("form"), ",", 2)[0] != name {
			continue
		}
		switch {
		case f.Type == dateType:
			return "Enter a valid date"
		case isNumeric(f.Type.Kind()):
			return "Enter a valid number"
		}
	}
	return "Invalid value"
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
