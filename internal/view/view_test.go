package view

import (
	"testing"
	"time"
)

func TestTextFallsBackToNotAvailable(t *testing.T) {
	if c := Text("   "); c.Text != NotAvailable || !c.Empty() {
		t.Fatalf("expected N/A, got %+v", c)
	}
	if c := Email(""); c.Text != NotAvailable {
		t.Fatalf("missing email should render N/A, got %+v", c)
	}
	if c := Date(nil); c.Text != NotAvailable {
		t.Fatalf("nil date should render N/A, got %+v", c)
	}
}

func TestTruncatedKeepsTitle(t *testing.T) {
	c := Truncated("Annual general meeting", 6)
	if c.Text != "Annual..." || c.Title != "Annual general meeting" {
		t.Fatalf("unexpected truncation: %+v", c)
	}
	if c := Truncated("short", 10); c.Title != "" || c.Text != "short" {
		t.Fatalf("short text must not be truncated: %+v", c)
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags("<p>Hello <b>members</b></p>\n<p>welcome</p>")
	if got != "Hello members welcome" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Dhaka Study Center": "DS",
		"rahim":              "R",
		"":                   "?",
		"  ":                 "?",
	}
	for in, want := range cases {
		if got := Initials(in); got != want {
			t.Fatalf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTimestampRelativeTitle(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	at := now.Add(-3 * time.Hour)
	c := Timestamp(&at, now)
	if c.Text != "10 May 2026 09:00" || c.Title != "3 hours ago" {
		t.Fatalf("unexpected timestamp cell: %+v", c)
	}
}

func TestMoneyAndInt(t *testing.T) {
	if c := Money(12500, "bdt"); c.Text != "BDT 12,500" {
		t.Fatalf("unexpected money: %q", c.Text)
	}
	if c := Int(1200); c.Text != "1,200" {
		t.Fatalf("unexpected int: %q", c.Text)
	}
}
