package validation

import (
	"testing"
	"time"
)

type sampleForm struct {
	Name      string `form:"name" validate:"required,min=2,max=10"`
	Email     string `form:"email" validate:"omitempty,email"`
	Website   string `form:"website" validate:"omitempty,url"`
	StartYear int    `form:"start_year" validate:"required,year"`
	EndYear   int    `form:"end_year" validate:"required,year,gtefield=StartYear"`
	Phone     string `form:"phone" validate:"omitempty,phone"`
}

func fixedValidator() *Validator {
	return newWithClock(func() time.Time {
		return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	})
}

func TestMessagesKeyedByFormName(t *testing.T) {
	v := fixedValidator()
	err := v.Struct(sampleForm{Name: "x", Email: "nope", Website: "not a url", StartYear: 2020, EndYear: 2020})
	msgs := v.Messages(err)
	if msgs["name"] != "Must be at least 2 characters" {
		t.Fatalf("unexpected name message: %q", msgs["name"])
	}
	if msgs["email"] != "Enter a valid email address" {
		t.Fatalf("unexpected email message: %q", msgs["email"])
	}
	if msgs["website"] != "Enter a valid URL" {
		t.Fatalf("unexpected website message: %q", msgs["website"])
	}
	if _, ok := msgs["end_year"]; ok {
		t.Fatalf("equal years must be accepted")
	}
}

func TestYearRange(t *testing.T) {
	v := fixedValidator()
	msgs := v.Messages(v.Struct(sampleForm{Name: "ok", StartYear: 1899, EndYear: 2027}))
	if msgs["start_year"] != "Must be a year between 1900 and 2026" {
		t.Fatalf("unexpected start_year message: %q", msgs["start_year"])
	}
	if msgs["end_year"] == "" {
		t.Fatalf("expected end_year beyond current year to fail")
	}
}

func TestCrossFieldRule(t *testing.T) {
	v := fixedValidator()
	msgs := v.Messages(v.Struct(sampleForm{Name: "ok", StartYear: 2024, EndYear: 2020}))
	if msgs["end_year"] != "Must not be less than start year" {
		t.Fatalf("unexpected end_year message: %q", msgs["end_year"])
	}
}

func TestPhone(t *testing.T) {
	v := fixedValidator()
	if msgs := v.Messages(v.Struct(sampleForm{Name: "ok", StartYear: 2020, EndYear: 2021, Phone: "+880 1711 000000"})); msgs != nil {
		t.Fatalf("expected valid phone, got %v", msgs)
	}
	msgs := v.Messages(v.Struct(sampleForm{Name: "ok", StartYear: 2020, EndYear: 2021, Phone: "12ab"}))
	if msgs["phone"] != "Enter a valid phone number" {
		t.Fatalf("unexpected phone message: %q", msgs["phone"])
	}
}

func TestMessagesNilOnSuccess(t *testing.T) {
	v := fixedValidator()
	if msgs := v.Messages(v.Struct(sampleForm{Name: "ok", StartYear: 2020, EndYear: 2021})); msgs != nil {
		t.Fatalf("expected no messages, got %v", msgs)
	}
}
