package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/status"
	"bssaj-admin/internal/view"
)

var paymentMethods = options("BANK_TRANSFER", "CASH", "CARD", "MOBILE_BANKING")

type Payment struct {
	ID            string     `json:"id"`
	Reference     string     `json:"reference"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Method        string     `json:"method"`
	Purpose       string     `json:"purpose"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"due_date"`
	PaidAt        *time.Time `json:"paid_at"`
	TransactionID string     `json:"transaction_id"`
	Payer         Ref        `json:"payer"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

type PaymentForm struct {
	PayerID       string    `json:"payer_id" form:"payer_id" validate:"required"`
	Amount        float64   `json:"amount" form:"amount" validate:"required,gt=0"`
	Currency      string    `json:"currency" form:"currency" validate:"required,len=3"`
	Method        string    `json:"method" form:"method" validate:"required,oneof=BANK_TRANSFER CASH CARD MOBILE_BANKING"`
	Purpose       string    `json:"purpose" form:"purpose" validate:"required,max=200"`
	DueDate       form.Date `json:"due_date" form:"due_date"`
	TransactionID string    `json:"transaction_id,omitempty" form:"transaction_id" validate:"max=100"`
}

func paymentDefinition() screen.Definition[Payment, PaymentForm] {
	statuses := options(status.Payment.Values()...)
	return screen.Definition[Payment, PaymentForm]{
		Collection: "payments",
		Singular:   "Payment",
		Plural:     "Payments",
		Body:       form.BodyJSON,
		Fields: []form.Field{
			{Name: "payer_id", Label: "Payer", Kind: form.KindSelect, OptionsFrom: SourceUsers, Required: true},
			{Name: "amount", Label: "Amount", Kind: form.KindNumber, Required: true},
			{Name: "currency", Label: "Currency", Kind: form.KindText, Placeholder: "JPY", Required: true},
			{Name: "method", Label: "Method", Kind: form.KindSelect, Options: paymentMethods, Required: true},
			{Name: "purpose", Label: "Purpose", Kind: form.KindText, Placeholder: "Annual membership fee", Required: true},
			{Name: "due_date", Label: "Due date", Kind: form.KindDate},
			{Name: "transaction_id", Label: "Transaction ID", Kind: form.KindText},
		},
		Columns: []screen.Column[Payment]{
			{Label: "Reference", Cell: func(p Payment, _ screen.Env) view.Cell { return view.Text(firstNonEmpty(p.Reference, p.ID)) }},
			{Label: "Payer", Cell: func(p Payment, _ screen.Env) view.Cell { return view.Text(p.Payer.Name) }},
			{Label: "Amount", Cell: func(p Payment, _ screen.Env) view.Cell { return view.Money(p.Amount, p.Currency) }},
			{Label: "Due", Cell: func(p Payment, _ screen.Env) view.Cell { return view.Date(p.DueDate) }},
			{Label: "Status", Cell: func(p Payment, _ screen.Env) view.Cell { return view.BadgeCell(status.Payment.Badge(p.Status)) }},
		},
		Filters: []screen.Filter{{Key: "status", Label: "Status", Options: statuses}},
		Sections: func(p Payment, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Reference", view.Text(p.Reference)),
					item("Amount", view.Money(p.Amount, p.Currency)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Method", view.Text(titleWords(p.Method))),
					item("Purpose", view.Text(p.Purpose)),
					item("Due date", view.Date(p.DueDate)),
					item("Paid at", view.Timestamp(p.PaidAt, env.Now)),
					item("Transaction ID", view.Text(p.TransactionID)),
				}},
				{Title: detail.SectionRelationships, Items: []detail.Item{
					item("Payer", view.Text(p.Payer.Name)),
					item("Payer email", view.Email(p.Payer.Email)),
				}},
				{Title: detail.SectionStatus, Items: []detail.Item{
					item("Status", view.BadgeCell(status.Payment.Badge(p.Status))),
				}},
				timestampsSection(p.CreatedAt, p.UpdatedAt, env),
				systemSection(p.ID),
			}
		},
		ID:   func(p Payment) string { return p.ID },
		Name: func(p Payment) string { return firstNonEmpty(p.Reference, p.ID) },
		ToForm: func(p Payment) PaymentForm {
			return PaymentForm{
				PayerID:       p.Payer.ID,
				Amount:        p.Amount,
				Currency:      p.Currency,
				Method:        p.Method,
				Purpose:       p.Purpose,
				DueDate:       dateOf(p.DueDate),
				TransactionID: p.TransactionID,
			}
		},
		Approval:        paymentApproval,
		ApprovalPayload: func(approve bool) any { return map[string]string{"status": status.PaymentDecision(approve)} },
		Transitions: &screen.Transitions[Payment]{
			Field:   "status",
			Current: func(p Payment) string { return p.Status },
			Options: func(p Payment) []string { return paymentTransitions(p.Status) },
			Set:     status.Payment,
		},
		Actions: []screen.CollectionAction{{
			Name:    "mark-overdue",
			Label:   "Mark overdue",
			Path:    "mark-overdue",
			Success: "Overdue payments marked",
			Failure: "Failed to mark overdue payments",
		}},
	}
}

// paymentApproval offers approve and reject only while a decision is open;
// settled payments show as approved or rejected.
func paymentApproval(p Payment) status.Approval {
	switch {
	case status.PaymentDecidable(p.Status):
		return status.Pending
	case p.Status == status.PaymentPaid:
		return status.Approved
	default:
		return status.Rejected
	}
}

func paymentTransitions(from string) []string {
	var out []string
	for _, v := range status.Payment.Values() {
		if v != from {
			out = append(out, v)
		}
	}
	return out
}
