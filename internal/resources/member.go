package resources

import (
	"context"
	"strings"
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

var memberKinds = options("GENERAL", "EXECUTIVE", "HONORARY", "LIFETIME")

type Member struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Kind        string     `json:"kind"`
	Institution string     `json:"institution"`
	JoinedAt    *time.Time `json:"joined_at"`
	UserID      string     `json:"user_id"`
	User        Ref        `json:"user"`
	AgencyID    string     `json:"agency_id"`
	Agency      AgencyRef  `json:"agency"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type MemberForm struct {
	UserID      string    `json:"user_id" form:"user_id" validate:"required"`
	Name        string    `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email       string    `json:"email" form:"email" validate:"required,email"`
	Phone       string    `json:"phone,omitempty" form:"phone" validate:"omitempty,phone"`
	Kind        string    `json:"kind" form:"kind" validate:"required,oneof=GENERAL EXECUTIVE HONORARY LIFETIME"`
	Institution string    `json:"institution,omitempty" form:"institution" validate:"max=150"`
	AgencyID    string    `json:"agency_id,omitempty" form:"agency_id"`
	JoinedAt    form.Date `json:"joined_at" form:"joined_at"`
}

func memberDefinition(lookups *Lookups) screen.Definition[Member, MemberForm] {
	return screen.Definition[Member, MemberForm]{
		Collection: "members",
		Singular:   "Member",
		Plural:     "Members",
		Body:       form.BodyJSON,
		Fields: []form.Field{
			{Name: "user_id", Label: "User", Kind: form.KindSelect, OptionsFrom: SourceUsers, Required: true},
			{Name: "name", Label: "Name", Kind: form.KindText, Required: true, Help: "Left blank, it is copied from the selected user."},
			{Name: "email", Label: "Email", Kind: form.KindEmail, Required: true, Help: "Left blank, it is copied from the selected user."},
			{Name: "phone", Label: "Phone", Kind: form.KindText},
			{Name: "kind", Label: "Membership", Kind: form.KindSelect, Options: memberKinds, Required: true},
			{Name: "institution", Label: "Institution", Kind: form.KindText},
			{Name: "agency_id", Label: "Agency", Kind: form.KindSelect, OptionsFrom: SourceAgencies},
			{Name: "joined_at", Label: "Joined", Kind: form.KindDate},
		},
		Columns: []screen.Column[Member]{
			{Label: "Name", Cell: func(m Member, _ screen.Env) view.Cell { return view.Text(m.Name) }},
			{Label: "Email", Cell: func(m Member, _ screen.Env) view.Cell { return view.Email(m.Email) }},
			{Label: "Membership", Cell: func(m Member, _ screen.Env) view.Cell { return view.Text(titleWords(m.Kind)) }},
			{Label: "Agency", Cell: func(m Member, env screen.Env) view.Cell { return agencyCell(m.Agency, env) }},
			{Label: "Joined", Cell: func(m Member, _ screen.Env) view.Cell { return view.Date(m.JoinedAt) }},
		},
		Filters: []screen.Filter{{Key: "kind", Label: "Membership", Options: memberKinds}},
		Sections: func(m Member, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Name", view.Text(m.Name)),
					item("Membership", view.Text(titleWords(m.Kind))),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Email", view.Email(m.Email)),
					item("Phone", view.Text(m.Phone)),
					item("Institution", view.Text(m.Institution)),
					item("Joined", view.Date(m.JoinedAt)),
				}},
				{Title: detail.SectionRelationships, Items: []detail.Item{
					item("User", view.Text(m.User.Name)),
					item("User email", view.Email(m.User.Email)),
					item("Agency", agencyCell(m.Agency, env)),
				}},
				timestampsSection(m.CreatedAt, m.UpdatedAt, env),
				systemSection(m.ID, item("User ID", view.Text(firstNonEmpty(m.UserID, m.User.ID)))),
			}
		},
		ID:   func(m Member) string { return m.ID },
		Name: func(m Member) string { return m.Name },
		ToForm: func(m Member) MemberForm {
			return MemberForm{
				UserID:      firstNonEmpty(m.UserID, m.User.ID),
				Name:        m.Name,
				Email:       m.Email,
				Phone:       m.Phone,
				Kind:        m.Kind,
				Institution: m.Institution,
				AgencyID:    firstNonEmpty(m.AgencyID, m.Agency.ID),
				JoinedAt:    dateOf(m.JoinedAt),
			}
		},
		Autofill: func(ctx context.Context, f *MemberForm) error {
			return autofillMember(ctx, lookups, f)
		},
	}
}

// autofillMember copies the selected user's name and email into blank fields.
// Fields the admin typed are left alone.
func autofillMember(ctx context.Context, lookups *Lookups, f *MemberForm) error {
	if f.UserID == "" || (strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Email) != "") {
		return nil
	}
	users, err := lookups.Users(ctx)
	if err != nil {
		return err
	}
	u, ok := users.Get(f.UserID)
	if !ok {
		return nil
	}
	if strings.TrimSpace(f.Name) == "" {
		f.Name = u.Name
	}
	if strings.TrimSpace(f.Email) == "" {
		f.Email = u.Email
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
