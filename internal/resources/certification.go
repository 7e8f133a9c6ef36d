package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

type Certification struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	IssuedBy    string     `json:"issued_by"`
	Description string     `json:"description"`
	IssueDate   *time.Time `json:"issue_date"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	Image       string     `json:"image"`
	AgencyID    string     `json:"agency_id"`
	Agency      AgencyRef  `json:"agency"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type CertificationForm struct {
	Title       string    `form:"title" validate:"required,min=3,max=150"`
	AgencyID    string    `form:"agency_id" validate:"required"`
	IssuedBy    string    `form:"issued_by" validate:"required,max=150"`
	Description string    `form:"description" validate:"max=2000"`
	IssueDate   form.Date `form:"issue_date" validate:"required"`
	ExpiryDate  form.Date `form:"expiry_date"`
}

func certificationDefinition() screen.Definition[Certification, CertificationForm] {
	return screen.Definition[Certification, CertificationForm]{
		Collection: "certifications",
		Singular:   "Certification",
		Plural:     "Certifications",
		Body:       form.BodyMultipart,
		Fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.KindText, Required: true},
			{Name: "agency_id", Label: "Agency", Kind: form.KindSelect, OptionsFrom: SourceAgencies, Required: true},
			{Name: "issued_by", Label: "Issued by", Kind: form.KindText, Required: true},
			{Name: "description", Label: "Description", Kind: form.KindTextarea},
			{Name: "issue_date", Label: "Issue date", Kind: form.KindDate, Required: true},
			{Name: "expiry_date", Label: "Expiry date", Kind: form.KindDate},
			{Name: "image", Label: "Certificate image", Kind: form.KindFile},
		},
		Columns: []screen.Column[Certification]{
			{Label: "Image", Cell: func(c Certification, env screen.Env) view.Cell { return env.Images.Picture(c.Image) }},
			{Label: "Title", Cell: func(c Certification, _ screen.Env) view.Cell { return view.Truncated(c.Title, 60) }},
			{Label: "Agency", Cell: func(c Certification, env screen.Env) view.Cell { return agencyCell(c.Agency, env) }},
			{Label: "Issued", Cell: func(c Certification, _ screen.Env) view.Cell { return view.Date(c.IssueDate) }},
			{Label: "Expires", Cell: func(c Certification, _ screen.Env) view.Cell { return view.Date(c.ExpiryDate) }},
		},
		Filters: []screen.Filter{{Key: "agency_id", Label: "Agency", OptionsFrom: SourceAgencies}},
		Sections: func(c Certification, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Image", env.Images.Picture(c.Image)),
					item("Title", view.Text(c.Title)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Issued by", view.Text(c.IssuedBy)),
					item("Issue date", view.Date(c.IssueDate)),
					item("Expiry date", view.Date(c.ExpiryDate)),
					item("Description", view.Text(c.Description)),
				}},
				{Title: detail.SectionRelationships, Items: []detail.Item{
					item("Agency", agencyCell(c.Agency, env)),
					item("Agency email", view.Email(c.Agency.Email)),
				}},
				timestampsSection(c.CreatedAt, c.UpdatedAt, env),
				systemSection(c.ID, item("Agency ID", view.Text(c.AgencyID))),
			}
		},
		ID:   func(c Certification) string { return c.ID },
		Name: func(c Certification) string { return c.Title },
		ToForm: func(c Certification) CertificationForm {
			agencyID := c.AgencyID
			if agencyID == "" {
				agencyID = c.Agency.ID
			}
			return CertificationForm{
				Title:       c.Title,
				AgencyID:    agencyID,
				IssuedBy:    c.IssuedBy,
				Description: c.Description,
				IssueDate:   dateOf(c.IssueDate),
				ExpiryDate:  dateOf(c.ExpiryDate),
			}
		},
		RemoteImages: func(c Certification) map[string][]string { return imageSlot("image", c.Image) },
	}
}

func dateOf(t *time.Time) form.Date {
	if t == nil {
		return form.Date{}
	}
	return form.Date{Time: *t}
}
