package form

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	// ISOLayout is how dates travel to the API.
	ISOLayout = "2006-01-02T15:04:05Z07:00"
)

// Date is a calendar date with no time of day, kept in UTC.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts the input format and full ISO-8601 timestamps from the API.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("form: invalid date %q", s)
	}
	y, m, d := t.Date()
	return NewDate(y, m, d), nil
}

// String is the value used by date inputs.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(ISOLayout)
}

// Ptr returns nil for the zero date so views render it as missing.
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.ISO())
}

func (d *Date) UnmarshalJSON(raw []byte) error {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	if s == nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
