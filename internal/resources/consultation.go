package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/status"
	"bssaj-admin/internal/view"
)

type Consultation struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ConsultationForm struct {
	Name    string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" form:"phone" validate:"omitempty,phone"`
	Subject string `json:"subject" form:"subject" validate:"required,min=3,max=200"`
	Message string `json:"message" form:"message" validate:"required,min=10,max=5000"`
	Status  string `json:"status,omitempty" form:"status" validate:"omitempty,oneof=PENDING RESOLVED CANCELLED"`
}

func consultationDefinition() screen.Definition[Consultation, ConsultationForm] {
	statuses := options(status.Consultation.Values()...)
	return screen.Definition[Consultation, ConsultationForm]{
		Collection: "consultations",
		Singular:   "Consultation",
		Plural:     "Consultations",
		Body:       form.BodyJSON,
		Fields: []form.Field{
			{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
			{Name: "email", Label: "Email", Kind: form.KindEmail, Required: true},
			{Name: "phone", Label: "Phone", Kind: form.KindText},
			{Name: "subject", Label: "Subject", Kind: form.KindText, Required: true},
			{Name: "message", Label: "Message", Kind: form.KindTextarea, Required: true},
			{Name: "status", Label: "Status", Kind: form.KindSelect, Options: statuses},
		},
		Columns: []screen.Column[Consultation]{
			{Label: "Name", Cell: func(c Consultation, _ screen.Env) view.Cell { return view.Text(c.Name) }},
			{Label: "Email", Cell: func(c Consultation, _ screen.Env) view.Cell { return view.Email(c.Email) }},
			{Label: "Subject", Cell: func(c Consultation, _ screen.Env) view.Cell { return view.Truncated(c.Subject, 50) }},
			{Label: "Status", Cell: func(c Consultation, _ screen.Env) view.Cell { return view.BadgeCell(status.Consultation.Badge(c.Status)) }},
			{Label: "Received", Cell: func(c Consultation, env screen.Env) view.Cell { return view.Timestamp(c.CreatedAt, env.Now) }},
		},
		Filters: []screen.Filter{{Key: "status", Label: "Status", Options: statuses}},
		Sections: func(c Consultation, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Name", view.Text(c.Name)),
					item("Email", view.Email(c.Email)),
					item("Phone", view.Text(c.Phone)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Subject", view.Text(c.Subject)),
					item("Message", view.Text(c.Message)),
				}},
				{Title: detail.SectionStatus, Items: []detail.Item{
					item("Status", view.BadgeCell(status.Consultation.Badge(c.Status))),
				}},
				timestampsSection(c.CreatedAt, c.UpdatedAt, env),
				systemSection(c.ID),
			}
		},
		ID:   func(c Consultation) string { return c.ID },
		Name: func(c Consultation) string { return c.Subject },
		ToForm: func(c Consultation) ConsultationForm {
			return ConsultationForm{
				Name:    c.Name,
				Email:   c.Email,
				Phone:   c.Phone,
				Subject: c.Subject,
				Message: c.Message,
				Status:  c.Status,
			}
		},
		Transitions: &screen.Transitions[Consultation]{
			Field:   "status",
			Current: func(c Consultation) string { return c.Status },
			Options: func(c Consultation) []string { return status.ConsultationTransitions(c.Status) },
			Set:     status.Consultation,
		},
	}
}
