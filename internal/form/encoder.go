package form

import (
	"net/url"

	playform "github.com/go-playground/form/v4"
)

// Encoder turns a form struct back into values: Input for pre-filling the
// HTML form, Payload for the multipart request sent to the API.
type Encoder struct {
	input   *playform.Encoder
	payload *playform.Encoder
}

func NewEncoder() *Encoder {
	input := playform.NewEncoder()
	input.RegisterCustomTypeFunc(func(x interface{}) ([]string, error) {
		d := x.(Date)
		if d.IsZero() {
			return nil, nil
		}
		return []string{d.String()}, nil
	}, Date{})

	payload := playform.NewEncoder()
	payload.RegisterCustomTypeFunc(func(x interface{}) ([]string, error) {
		d := x.(Date)
		if d.IsZero() {
			return nil, nil
		}
		return []string{d.ISO()}, nil
	}, Date{})

	return &Encoder{input: input, payload: payload}
}

func (e *Encoder) Input(v any) (url.Values, error) {
	return e.input.Encode(v)
}

func (e *Encoder) Payload(v any) (url.Values, error) {
	values, err := e.payload.Encode(v)
	if err != nil {
		return nil, err
	}
	for k, vs := range values {
		if len(vs) == 0 {
			delete(values, k)
		}
	}
	return values, nil
}
