package resources

import (
	"strconv"
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

type SuccessStory struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}

type Agency struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	Website         string         `json:"website"`
	Address         string         `json:"address"`
	ContactPerson   string         `json:"contact_person"`
	Description     string         `json:"description"`
	EstablishedYear int            `json:"established_year"`
	Logo            string         `json:"logo"`
	CoverPhoto      string         `json:"cover_photo"`
	Status          string         `json:"status"`
	ApprovedAt      *time.Time     `json:"approved_at"`
	Owner           Ref            `json:"owner"`
	SuccessStories  []SuccessStory `json:"success_stories"`
	CreatedAt       *time.Time     `json:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at"`
}

type AgencyForm struct {
	Name            string `form:"name" validate:"required,min=2,max=150"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"omitempty,phone"`
	Website         string `form:"website" validate:"omitempty,url"`
	Address         string `form:"address" validate:"max=300"`
	ContactPerson   string `form:"contact_person" validate:"omitempty,min=2,max=100"`
	Description     string `form:"description" validate:"max=5000"`
	EstablishedYear int    `form:"established_year" validate:"required,year"`
	Status          string `form:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

func agencyDefinition() screen.Definition[Agency, AgencyForm] {
	return screen.Definition[Agency, AgencyForm]{
		Collection: "agencies",
		Singular:   "Agency",
		Plural:     "Agencies",
		Body:       form.BodyMultipart,
		// Records that embed this one by reference.
		Invalidates: []string{"certifications", "jobs", "members"},
		Fields: []form.Field{
			{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
			{Name: "email", Label: "Email", Kind: form.KindEmail, Required: true},
			{Name: "phone", Label: "Phone", Kind: form.KindText, Placeholder: "+880 1711 000000"},
			{Name: "website", Label: "Website", Kind: form.KindURL, Placeholder: "https://"},
			{Name: "address", Label: "Address", Kind: form.KindTextarea},
			{Name: "contact_person", Label: "Contact person", Kind: form.KindText},
			{Name: "description", Label: "Description", Kind: form.KindRichText},
			{Name: "established_year", Label: "Established year", Kind: form.KindNumber, Required: true},
			{Name: "status", Label: "Status", Kind: form.KindSelect, Options: approvalOptions},
			{Name: "logo", Label: "Logo", Kind: form.KindFile},
			{Name: "cover_photo", Label: "Cover photo", Kind: form.KindFile},
			{Name: "success_stories", Label: "Success stories", Kind: form.KindFiles, Help: "Selecting new photos replaces the pending selection."},
		},
		Columns: []screen.Column[Agency]{
			{Label: "Agency", Cell: func(a Agency, env screen.Env) view.Cell { return env.Images.Avatar(a.Logo, a.Name) }},
			{Label: "Email", Cell: func(a Agency, _ screen.Env) view.Cell { return view.Email(a.Email) }},
			{Label: "Phone", Cell: func(a Agency, _ screen.Env) view.Cell { return view.Text(a.Phone) }},
			{Label: "Established", Cell: func(a Agency, _ screen.Env) view.Cell { return yearCell(a.EstablishedYear) }},
			{Label: "Status", Cell: func(a Agency, _ screen.Env) view.Cell {
				return view.BadgeCell(approvalOf(a.ApprovedAt, a.Status).Badge())
			}},
		},
		Filters: []screen.Filter{{Key: "status", Label: "Status", Options: approvalOptions}},
		Sections: func(a Agency, env screen.Env) []detail.Section {
			stories := make([]detail.Item, 0, len(a.SuccessStories))
			for i, s := range a.SuccessStories {
				stories = append(stories, item("Story "+strconv.Itoa(i+1), env.Images.Picture(s.Image)))
			}
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Logo", env.Images.Avatar(a.Logo, a.Name)),
					item("Cover", env.Images.Picture(a.CoverPhoto)),
					item("Name", view.Text(a.Name)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Email", view.Email(a.Email)),
					item("Phone", view.Text(a.Phone)),
					item("Website", view.Link(a.Website, "")),
					item("Address", view.Text(a.Address)),
					item("Contact person", view.Text(a.ContactPerson)),
					item("Established", yearCell(a.EstablishedYear)),
					item("Description", view.RichText(a.Description, 600)),
				}},
				{Title: detail.SectionRelationships, Items: append([]detail.Item{
					item("Owner", view.Text(a.Owner.Name)),
					item("Owner email", view.Email(a.Owner.Email)),
				}, stories...)},
				{Title: detail.SectionStatus, Items: []detail.Item{
					item("Status", view.BadgeCell(approvalOf(a.ApprovedAt, a.Status).Badge())),
					item("Approved at", view.Timestamp(a.ApprovedAt, env.Now)),
				}},
				timestampsSection(a.CreatedAt, a.UpdatedAt, env),
				systemSection(a.ID),
			}
		},
		ID:   func(a Agency) string { return a.ID },
		Name: func(a Agency) string { return a.Name },
		ToForm: func(a Agency) AgencyForm {
			return AgencyForm{
				Name:            a.Name,
				Email:           a.Email,
				Phone:           a.Phone,
				Website:         a.Website,
				Address:         a.Address,
				ContactPerson:   a.ContactPerson,
				Description:     a.Description,
				EstablishedYear: a.EstablishedYear,
				Status:          a.Status,
			}
		},
		RemoteImages: func(a Agency) map[string][]string {
			out := map[string][]string{}
			if a.Logo != "" {
				out["logo"] = []string{a.Logo}
			}
			if a.CoverPhoto != "" {
				out["cover_photo"] = []string{a.CoverPhoto}
			}
			for _, s := range a.SuccessStories {
				out["success_stories"] = append(out["success_stories"], s.Image)
			}
			return out
		},
	}
}

func yearCell(year int) view.Cell {
	if year <= 0 {
		return view.Text("")
	}
	return view.Text(strconv.Itoa(year))
}
