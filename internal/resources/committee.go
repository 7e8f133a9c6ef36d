package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

var designations = options("PRESIDENT", "VICE_PRESIDENT", "GENERAL_SECRETARY", "TREASURER", "MEMBER")

type Committee struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Designation string     `json:"designation"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Image       string     `json:"image"`
	Bio         string     `json:"bio"`
	TermStart   int        `json:"term_start"`
	TermEnd     int        `json:"term_end"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type CommitteeForm struct {
	Name        string `form:"name" validate:"required,min=2,max=100"`
	Designation string `form:"designation" validate:"required,oneof=PRESIDENT VICE_PRESIDENT GENERAL_SECRETARY TREASURER MEMBER"`
	Email       string `form:"email" validate:"omitempty,email"`
	Phone       string `form:"phone" validate:"omitempty,phone"`
	Bio         string `form:"bio" validate:"max=2000"`
	TermStart   int    `form:"term_start" validate:"required,year"`
	TermEnd     int    `form:"term_end" validate:"omitempty,gtefield=TermStart"`
}

func committeeDefinition() screen.Definition[Committee, CommitteeForm] {
	return screen.Definition[Committee, CommitteeForm]{
		Collection: "committees",
		Singular:   "Committee member",
		Plural:     "Committee",
		Body:       form.BodyMultipart,
		Fields: []form.Field{
			{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
			{Name: "designation", Label: "Designation", Kind: form.KindSelect, Options: designations, Required: true},
			{Name: "email", Label: "Email", Kind: form.KindEmail},
			{Name: "phone", Label: "Phone", Kind: form.KindText},
			{Name: "bio", Label: "Bio", Kind: form.KindTextarea},
			{Name: "term_start", Label: "Term start", Kind: form.KindNumber, Required: true},
			{Name: "term_end", Label: "Term end", Kind: form.KindNumber},
			{Name: "image", Label: "Photo", Kind: form.KindFile},
		},
		Columns: []screen.Column[Committee]{
			{Label: "Member", Cell: func(c Committee, env screen.Env) view.Cell { return env.Images.Avatar(c.Image, c.Name) }},
			{Label: "Designation", Cell: func(c Committee, _ screen.Env) view.Cell { return view.Text(titleWords(c.Designation)) }},
			{Label: "Email", Cell: func(c Committee, _ screen.Env) view.Cell { return view.Email(c.Email) }},
			{Label: "Term", Cell: func(c Committee, _ screen.Env) view.Cell { return termCell(c.TermStart, c.TermEnd) }},
		},
		Filters: []screen.Filter{{Key: "designation", Label: "Designation", Options: designations}},
		Sections: func(c Committee, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Photo", env.Images.Avatar(c.Image, c.Name)),
					item("Name", view.Text(c.Name)),
					item("Designation", view.Text(titleWords(c.Designation))),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Email", view.Email(c.Email)),
					item("Phone", view.Text(c.Phone)),
					item("Term", termCell(c.TermStart, c.TermEnd)),
					item("Bio", view.Text(c.Bio)),
				}},
				timestampsSection(c.CreatedAt, c.UpdatedAt, env),
				systemSection(c.ID),
			}
		},
		ID:   func(c Committee) string { return c.ID },
		Name: func(c Committee) string { return c.Name },
		ToForm: func(c Committee) CommitteeForm {
			return CommitteeForm{
				Name:        c.Name,
				Designation: c.Designation,
				Email:       c.Email,
				Phone:       c.Phone,
				Bio:         c.Bio,
				TermStart:   c.TermStart,
				TermEnd:     c.TermEnd,
			}
		},
		RemoteImages: func(c Committee) map[string][]string { return imageSlot("image", c.Image) },
	}
}

func termCell(start, end int) view.Cell {
	switch {
	case start <= 0:
		return view.Text("")
	case end <= 0:
		return view.Text(yearCell(start).Text + " - present")
	default:
		return view.Text(yearCell(start).Text + " - " + yearCell(end).Text)
	}
}
