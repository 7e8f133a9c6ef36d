package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/status"
	"bssaj-admin/internal/view"
)

var jobTypes = options("FULL_TIME", "PART_TIME", "CONTRACT", "INTERNSHIP")

type Job struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	Location     string     `json:"location"`
	Type         string     `json:"type"`
	SalaryMin    float64    `json:"salary_min"`
	SalaryMax    float64    `json:"salary_max"`
	Currency     string     `json:"currency"`
	Deadline     *time.Time `json:"deadline"`
	Status       string     `json:"status"`
	AgencyID     string     `json:"agency_id"`
	Agency       AgencyRef  `json:"agency"`
	PostedBy     Ref        `json:"posted_by"`
	ApprovedAt   *time.Time `json:"approved_at"`
	ApprovedBy   Ref        `json:"approved_by"`
	CreatedAt    *time.Time `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type JobForm struct {
	Title        string    `json:"title" form:"title" validate:"required,min=3,max=150"`
	Description  string    `json:"description" form:"description" validate:"required,min=20"`
	Requirements string    `json:"requirements,omitempty" form:"requirements" validate:"max=5000"`
	Location     string    `json:"location" form:"location" validate:"required,max=150"`
	Type         string    `json:"type" form:"type" validate:"required,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP"`
	SalaryMin    float64   `json:"salary_min,omitempty" form:"salary_min" validate:"gte=0"`
	SalaryMax    float64   `json:"salary_max,omitempty" form:"salary_max" validate:"omitempty,gtefield=SalaryMin"`
	Currency     string    `json:"currency,omitempty" form:"currency" validate:"omitempty,len=3"`
	Deadline     form.Date `json:"deadline" form:"deadline" validate:"required"`
	AgencyID     string    `json:"agency_id,omitempty" form:"agency_id"`
}

func jobDefinition() screen.Definition[Job, JobForm] {
	return screen.Definition[Job, JobForm]{
		Collection: "jobs",
		Singular:   "Job",
		Plural:     "Jobs",
		Body:       form.BodyJSON,
		Fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.KindText, Required: true},
			{Name: "agency_id", Label: "Agency", Kind: form.KindSelect, OptionsFrom: SourceAgencies},
			{Name: "type", Label: "Type", Kind: form.KindSelect, Options: jobTypes, Required: true},
			{Name: "location", Label: "Location", Kind: form.KindText, Required: true},
			{Name: "salary_min", Label: "Salary from", Kind: form.KindNumber},
			{Name: "salary_max", Label: "Salary to", Kind: form.KindNumber},
			{Name: "currency", Label: "Currency", Kind: form.KindText, Placeholder: "JPY"},
			{Name: "deadline", Label: "Application deadline", Kind: form.KindDate, Required: true},
			{Name: "description", Label: "Description", Kind: form.KindRichText, Required: true},
			{Name: "requirements", Label: "Requirements", Kind: form.KindTextarea},
		},
		Columns: []screen.Column[Job]{
			{Label: "Title", Cell: func(j Job, _ screen.Env) view.Cell { return view.Truncated(j.Title, 60) }},
			{Label: "Agency", Cell: func(j Job, env screen.Env) view.Cell { return agencyCell(j.Agency, env) }},
			{Label: "Type", Cell: func(j Job, _ screen.Env) view.Cell { return view.Text(titleWords(j.Type)) }},
			{Label: "Salary", Cell: func(j Job, _ screen.Env) view.Cell { return salaryCell(j) }},
			{Label: "Deadline", Cell: func(j Job, _ screen.Env) view.Cell { return view.Date(j.Deadline) }},
			{Label: "Status", Cell: func(j Job, _ screen.Env) view.Cell { return view.BadgeCell(jobApproval(j).Badge()) }},
		},
		Filters: []screen.Filter{
			{Key: "status", Label: "Status", Options: approvalOptions},
			{Key: "type", Label: "Type", Options: jobTypes},
		},
		Sections: func(j Job, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Title", view.Text(j.Title)),
					item("Type", view.Text(titleWords(j.Type))),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Location", view.Text(j.Location)),
					item("Salary", salaryCell(j)),
					item("Deadline", view.Date(j.Deadline)),
					item("Description", view.RichText(j.Description, 800)),
					item("Requirements", view.Text(j.Requirements)),
				}},
				{Title: detail.SectionRelationships, Items: []detail.Item{
					item("Agency", agencyCell(j.Agency, env)),
					item("Posted by", view.Text(j.PostedBy.Name)),
				}},
				approvalSection(jobApproval(j), j.ApprovedAt, j.ApprovedBy, env),
				timestampsSection(j.CreatedAt, j.UpdatedAt, env),
				systemSection(j.ID),
			}
		},
		ID:   func(j Job) string { return j.ID },
		Name: func(j Job) string { return j.Title },
		ToForm: func(j Job) JobForm {
			agencyID := j.AgencyID
			if agencyID == "" {
				agencyID = j.Agency.ID
			}
			return JobForm{
				Title:        j.Title,
				Description:  j.Description,
				Requirements: j.Requirements,
				Location:     j.Location,
				Type:         j.Type,
				SalaryMin:    j.SalaryMin,
				SalaryMax:    j.SalaryMax,
				Currency:     j.Currency,
				Deadline:     dateOf(j.Deadline),
				AgencyID:     agencyID,
			}
		},
		Approval: jobApproval,
	}
}

func jobApproval(j Job) status.Approval {
	return approvalOf(j.ApprovedAt, j.Status)
}

func salaryCell(j Job) view.Cell {
	switch {
	case j.SalaryMin <= 0 && j.SalaryMax <= 0:
		return view.Text("")
	case j.SalaryMax <= 0:
		return view.Money(j.SalaryMin, j.Currency)
	default:
		lo, hi := view.Money(j.SalaryMin, j.Currency), view.Money(j.SalaryMax, j.Currency)
		return view.Text(lo.Text + " - " + hi.Text)
	}
}
