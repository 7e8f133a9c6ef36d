package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CoverImage  string     `json:"cover_image"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type EventForm struct {
	Title       string    `form:"title" validate:"required,min=3,max=200"`
	Description string    `form:"description" validate:"required,min=10"`
	Location    string    `form:"location" validate:"required,max=200"`
	StartDate   form.Date `form:"start_date" validate:"required"`
	EndDate     form.Date `form:"end_date"`
}

func eventDefinition() screen.Definition[Event, EventForm] {
	return screen.Definition[Event, EventForm]{
		Collection: "events",
		Singular:   "Event",
		Plural:     "Events",
		Body:       form.BodyMultipart,
		Fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.KindText, Required: true},
			{Name: "description", Label: "Description", Kind: form.KindRichText, Required: true},
			{Name: "location", Label: "Location", Kind: form.KindText, Required: true},
			{Name: "start_date", Label: "Starts", Kind: form.KindDate, Required: true},
			{Name: "end_date", Label: "Ends", Kind: form.KindDate},
			{Name: "cover_image", Label: "Cover image", Kind: form.KindFile},
		},
		Columns: []screen.Column[Event]{
			{Label: "Cover", Cell: func(e Event, env screen.Env) view.Cell { return env.Images.Picture(e.CoverImage) }},
			{Label: "Title", Cell: func(e Event, _ screen.Env) view.Cell { return view.Truncated(e.Title, 60) }},
			{Label: "Location", Cell: func(e Event, _ screen.Env) view.Cell { return view.Text(e.Location) }},
			{Label: "Starts", Cell: func(e Event, _ screen.Env) view.Cell { return view.Date(e.StartDate) }},
			{Label: "Ends", Cell: func(e Event, _ screen.Env) view.Cell { return view.Date(e.EndDate) }},
		},
		Sections: func(e Event, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Cover", env.Images.Picture(e.CoverImage)),
					item("Title", view.Text(e.Title)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Location", view.Text(e.Location)),
					item("Starts", view.Date(e.StartDate)),
					item("Ends", view.Date(e.EndDate)),
					item("Description", view.RichText(e.Description, 800)),
				}},
				timestampsSection(e.CreatedAt, e.UpdatedAt, env),
				systemSection(e.ID),
			}
		},
		ID:   func(e Event) string { return e.ID },
		Name: func(e Event) string { return e.Title },
		ToForm: func(e Event) EventForm {
			return EventForm{
				Title:       e.Title,
				Description: e.Description,
				Location:    e.Location,
				StartDate:   dateOf(e.StartDate),
				EndDate:     dateOf(e.EndDate),
			}
		},
		RemoteImages: func(e Event) map[string][]string { return imageSlot("cover_image", e.CoverImage) },
		Prepare: func(f *EventForm) {
			if f.EndDate.IsZero() {
				f.EndDate = f.StartDate
			}
		},
	}
}
