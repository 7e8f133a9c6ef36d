package status

import (
	"testing"
	"time"

	"bssaj-admin/internal/view"
)

func TestDeriveApprovalIsExclusive(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name       string
		approvedAt *time.Time
		status     string
		want       Approval
	}{
		{"pending", nil, "", Pending},
		{"pending with other status", nil, "DRAFT", Pending},
		{"approved", &now, "", Approved},
		{"approved wins over rejected", &now, "REJECTED", Approved},
		{"rejected", nil, "REJECTED", Rejected},
		{"rejected lowercase", nil, "rejected", Rejected},
		{"zero time is pending", &time.Time{}, "", Pending},
	}
	for _, tc := range cases {
		if got := DeriveApproval(tc.approvedAt, tc.status); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestApprovalBadges(t *testing.T) {
	if b := Pending.Badge(); b.Label != "Pending" || b.Tone != view.ToneWarning {
		t.Fatalf("unexpected pending badge %+v", b)
	}
	if b := Rejected.Badge(); b.Label != "Rejected" || b.Tone != view.ToneDanger {
		t.Fatalf("unexpected rejected badge %+v", b)
	}
	if !Pending.Actionable() || Approved.Actionable() || Rejected.Actionable() {
		t.Fatalf("only pending resources offer approve and reject")
	}
	if ApprovalPatch(false)["is_approved"] {
		t.Fatalf("reject must send is_approved=false")
	}
}

func TestConsultationTransitions(t *testing.T) {
	got := ConsultationTransitions("RESOLVED")
	if len(got) != 2 || got[0] != "PENDING" || got[1] != "CANCELLED" {
		t.Fatalf("unexpected transitions %v", got)
	}
}

func TestPaymentRules(t *testing.T) {
	if !PaymentDecidable("OVERDUE") || PaymentDecidable("PAID") {
		t.Fatalf("unexpected decidable rule")
	}
	if PaymentDecision(true) != "PAID" || PaymentDecision(false) != "FAILED" {
		t.Fatalf("unexpected decision mapping")
	}
	if b := Payment.Badge("refunded"); b.Label != "Refunded" || b.Tone != view.ToneInfo {
		t.Fatalf("unexpected badge %+v", b)
	}
	if !Payment.Valid("OVERDUE") || Payment.Valid("LOST") {
		t.Fatalf("unexpected validity")
	}
}
