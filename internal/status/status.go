// Package status derives the approval state of moderated resources and lists
// the status sets of consultations and payments.
package status

import (
	"strings"
	"time"

	"bssaj-admin/internal/view"
)

type Approval string

const (
	Pending  Approval = "PENDING"
	Approved Approval = "APPROVED"
	Rejected Approval = "REJECTED"
)

// DeriveApproval: a set approvedAt wins, then an explicit REJECTED status;
// anything else is still pending.
func DeriveApproval(approvedAt *time.Time, status string) Approval {
	if approvedAt != nil && !approvedAt.IsZero() {
		return Approved
	}
	if strings.EqualFold(strings.TrimSpace(status), string(Rejected)) {
		return Rejected
	}
	return Pending
}

func (a Approval) Label() string {
	switch a {
	case Approved:
		return "Approved"
	case Rejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

func (a Approval) Badge() view.Badge {
	switch a {
	case Approved:
		return view.Badge{Label: a.Label(), Tone: view.ToneSuccess}
	case Rejected:
		return view.Badge{Label: a.Label(), Tone: view.ToneDanger}
	default:
		return view.Badge{Label: a.Label(), Tone: view.ToneWarning}
	}
}

// Actionable reports whether approve and reject are offered.
func (a Approval) Actionable() bool {
	return a == Pending
}

// ApprovalPatch is the body of an approve or reject request.
func ApprovalPatch(approve bool) map[string]bool {
	return map[string]bool{"is_approved": approve}
}
