package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

type Scholarship struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Provider    string     `json:"provider"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	StartYear   int        `json:"start_year"`
	EndYear     int        `json:"end_year"`
	Website     string     `json:"website"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ScholarshipForm struct {
	Title       string    `json:"title" form:"title" validate:"required,min=3,max=150"`
	Provider    string    `json:"provider" form:"provider" validate:"required,max=150"`
	Description string    `json:"description" form:"description" validate:"required,min=10"`
	Amount      float64   `json:"amount,omitempty" form:"amount" validate:"gte=0"`
	Currency    string    `json:"currency,omitempty" form:"currency" validate:"omitempty,len=3"`
	StartYear   int       `json:"start_year" form:"start_year" validate:"required,year"`
	EndYear     int       `json:"end_year" form:"end_year" validate:"required,year,gtefield=StartYear"`
	Website     string    `json:"website,omitempty" form:"website" validate:"omitempty,url"`
	Deadline    form.Date `json:"deadline" form:"deadline"`
}

func scholarshipDefinition() screen.Definition[Scholarship, ScholarshipForm] {
	return screen.Definition[Scholarship, ScholarshipForm]{
		Collection: "scholarships",
		Singular:   "Scholarship",
		Plural:     "Scholarships",
		Body:       form.BodyJSON,
		Fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.KindText, Required: true},
			{Name: "provider", Label: "Provider", Kind: form.KindText, Required: true},
			{Name: "description", Label: "Description", Kind: form.KindRichText, Required: true},
			{Name: "amount", Label: "Amount", Kind: form.KindNumber},
			{Name: "currency", Label: "Currency", Kind: form.KindText, Placeholder: "JPY"},
			{Name: "start_year", Label: "Start year", Kind: form.KindNumber, Required: true},
			{Name: "end_year", Label: "End year", Kind: form.KindNumber, Required: true},
			{Name: "website", Label: "Website", Kind: form.KindURL, Placeholder: "https://"},
			{Name: "deadline", Label: "Application deadline", Kind: form.KindDate},
		},
		Columns: []screen.Column[Scholarship]{
			{Label: "Title", Cell: func(s Scholarship, _ screen.Env) view.Cell { return view.Truncated(s.Title, 60) }},
			{Label: "Provider", Cell: func(s Scholarship, _ screen.Env) view.Cell { return view.Text(s.Provider) }},
			{Label: "Amount", Cell: func(s Scholarship, _ screen.Env) view.Cell { return amountCell(s.Amount, s.Currency) }},
			{Label: "Years", Cell: func(s Scholarship, _ screen.Env) view.Cell { return termCell(s.StartYear, s.EndYear) }},
			{Label: "Deadline", Cell: func(s Scholarship, _ screen.Env) view.Cell { return view.Date(s.Deadline) }},
		},
		Sections: func(s Scholarship, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Title", view.Text(s.Title)),
					item("Provider", view.Text(s.Provider)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Amount", amountCell(s.Amount, s.Currency)),
					item("Years", termCell(s.StartYear, s.EndYear)),
					item("Deadline", view.Date(s.Deadline)),
					item("Website", view.Link(s.Website, "")),
					item("Description", view.RichText(s.Description, 800)),
				}},
				timestampsSection(s.CreatedAt, s.UpdatedAt, env),
				systemSection(s.ID),
			}
		},
		ID:   func(s Scholarship) string { return s.ID },
		Name: func(s Scholarship) string { return s.Title },
		ToForm: func(s Scholarship) ScholarshipForm {
			return ScholarshipForm{
				Title:       s.Title,
				Provider:    s.Provider,
				Description: s.Description,
				Amount:      s.Amount,
				Currency:    s.Currency,
				StartYear:   s.StartYear,
				EndYear:     s.EndYear,
				Website:     s.Website,
				Deadline:    dateOf(s.Deadline),
			}
		},
	}
}

func amountCell(amount float64, currency string) view.Cell {
	if amount <= 0 {
		return view.Text("")
	}
	return view.Money(amount, currency)
}
