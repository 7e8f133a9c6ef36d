package status

import (
	"slices"
	"strings"

	"bssaj-admin/internal/view"
)

// Set is a closed list of status values with their badges.
type Set struct {
	values []string
	tones  map[string]view.Tone
}

func newSet(tones map[string]view.Tone, order ...string) Set {
	return Set{values: order, tones: tones}
}

func (s Set) Values() []string {
	return slices.Clone(s.values)
}

func (s Set) Valid(v string) bool {
	return slices.Contains(s.values, v)
}

func (s Set) Badge(v string) view.Badge {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return view.Badge{Label: view.NotAvailable, Tone: view.ToneNeutral}
	}
	tone, ok := s.tones[v]
	if !ok {
		tone = view.ToneNeutral
	}
	return view.Badge{Label: titleCase(v), Tone: tone}
}

var Consultation = newSet(map[string]view.Tone{
	"PENDING":   view.ToneWarning,
	"RESOLVED":  view.ToneSuccess,
	"CANCELLED": view.ToneNeutral,
}, "PENDING", "RESOLVED", "CANCELLED")

// ConsultationTransitions lists the states a consultation can move to. The
// set is freely reversible.
func ConsultationTransitions(from string) []string {
	var out []string
	for _, v := range Consultation.values {
		if v != from {
			out = append(out, v)
		}
	}
	return out
}

const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentOverdue  = "OVERDUE"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

var Payment = newSet(map[string]view.Tone{
	PaymentPending:  view.ToneWarning,
	PaymentPaid:     view.ToneSuccess,
	PaymentOverdue:  view.ToneDanger,
	PaymentFailed:   view.ToneDanger,
	PaymentRefunded: view.ToneInfo,
}, PaymentPending, PaymentPaid, PaymentOverdue, PaymentFailed, PaymentRefunded)

// PaymentDecidable reports whether an admin may still approve or reject.
func PaymentDecidable(s string) bool {
	return s == PaymentPending || s == PaymentOverdue
}

// PaymentDecision maps approve to PAID and reject to FAILED.
func PaymentDecision(approve bool) string {
	if approve {
		return PaymentPaid
	}
	return PaymentFailed
}

func titleCase(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
