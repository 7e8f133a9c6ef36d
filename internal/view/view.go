// Package view holds the small presentation values shared by every screen:
// table and detail cells, status badges and toast notifications.
package view

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// NotAvailable is rendered for missing optional values.
const NotAvailable = "N/A"

type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

type Badge struct {
	Label string
	Tone  Tone
}

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}

func Success(msg string) Toast { return Toast{Kind: ToastSuccess, Message: msg} }

func Failure(msg string) Toast { return Toast{Kind: ToastError, Message: msg} }

func (t Toast) IsZero() bool { return t.Message == "" }

type CellKind string

const (
	CellText     CellKind = "text"
	CellLink     CellKind = "link"
	CellImage    CellKind = "image"
	CellBadge    CellKind = "badge"
	CellSkeleton CellKind = "skeleton"
)

// Cell is one rendered value in a table row or a detail section.
// An image cell with an empty Image renders Fallback as an avatar.
type Cell struct {
	Kind     CellKind
	Text     string
	Title    string
	Href     string
	Image    string
	Fallback string
	Badge    Badge
}

func (c Cell) Empty() bool {
	return c.Kind == CellText && c.Text == NotAvailable
}

func Text(s string) Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return Cell{Kind: CellText, Text: NotAvailable}
	}
	return Cell{Kind: CellText, Text: s}
}

// Truncated shortens s to n runes, keeping the full text as the title.
func Truncated(s string, n int) Cell {
	c := Text(s)
	if c.Empty() || utf8.RuneCountInString(c.Text) <= n {
		return c
	}
	r := []rune(c.Text)
	c.Title = c.Text
	c.Text = strings.TrimRightFunc(string(r[:n]), unicode.IsSpace) + "..."
	return c
}

// RichText renders sanitized upstream HTML as plain text in tables.
func RichText(s string, n int) Cell {
	return Truncated(StripTags(s), n)
}

func Int(n int) Cell {
	return Cell{Kind: CellText, Text: humanize.Comma(int64(n))}
}

func Money(amount float64, currency string) Cell {
	text := humanize.CommafWithDigits(amount, 2)
	if currency != "" {
		text = strings.ToUpper(currency) + " " + text
	}
	return Cell{Kind: CellText, Text: text}
}

func Bool(b bool) Cell {
	if b {
		return Cell{Kind: CellText, Text: "Yes"}
	}
	return Cell{Kind: CellText, Text: "No"}
}

func Link(href, text string) Cell {
	href = strings.TrimSpace(href)
	if href == "" {
		return Text("")
	}
	if strings.TrimSpace(text) == "" {
		text = href
	}
	return Cell{Kind: CellLink, Href: href, Text: text}
}

func Email(addr string) Cell {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return Text("")
	}
	return Cell{Kind: CellLink, Href: "mailto:" + addr, Text: addr}
}

func BadgeCell(b Badge) Cell {
	return Cell{Kind: CellBadge, Badge: b, Text: b.Label}
}

// Date formats a calendar date; nil or zero renders as N/A.
func Date(t *time.Time) Cell {
	if t == nil || t.IsZero() {
		return Text("")
	}
	return Cell{Kind: CellText, Text: t.Format("02 Jan 2006")}
}

// Timestamp renders the absolute time with a relative hint as the title.
func Timestamp(t *time.Time, now time.Time) Cell {
	if t == nil || t.IsZero() {
		return Text("")
	}
	return Cell{
		Kind:  CellText,
		Text:  t.Format("02 Jan 2006 15:04"),
		Title: humanize.RelTime(*t, now, "ago", "from now"),
	}
}

func Bytes(n int) Cell {
	return Cell{Kind: CellText, Text: humanize.Bytes(uint64(max(n, 0)))}
}

// Initials returns up to two uppercase initials for avatar fallbacks.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToUpper(r))
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// StripTags drops markup from rich-text fields and collapses whitespace.
func StripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
