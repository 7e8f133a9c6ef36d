package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

type Banner struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Image     string     `json:"image"`
	IsActive  bool       `json:"is_active"`
	Position  int        `json:"position"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type BannerForm struct {
	Title    string `form:"title" validate:"required,min=3,max=120"`
	Link     string `form:"link" validate:"omitempty,url"`
	IsActive bool   `form:"is_active"`
	Position int    `form:"position" validate:"gte=0,lte=1000"`
}

func bannerDefinition() screen.Definition[Banner, BannerForm] {
	return screen.Definition[Banner, BannerForm]{
		Collection: "banners",
		Singular:   "Banner",
		Plural:     "Banners",
		Body:       form.BodyMultipart,
		Fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.KindText, Required: true},
			{Name: "link", Label: "Link", Kind: form.KindURL, Placeholder: "https://"},
			{Name: "position", Label: "Position", Kind: form.KindNumber, Help: "Lower numbers are shown first."},
			{Name: "is_active", Label: "Active", Kind: form.KindCheckbox},
			{Name: "image", Label: "Image", Kind: form.KindFile},
		},
		Columns: []screen.Column[Banner]{
			{Label: "Image", Cell: func(b Banner, env screen.Env) view.Cell { return env.Images.Picture(b.Image) }},
			{Label: "Title", Cell: func(b Banner, _ screen.Env) view.Cell { return view.Truncated(b.Title, 60) }},
			{Label: "Link", Cell: func(b Banner, _ screen.Env) view.Cell { return view.Link(b.Link, "") }},
			{Label: "Active", Cell: func(b Banner, _ screen.Env) view.Cell { return view.Bool(b.IsActive) }},
		},
		Sections: func(b Banner, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Image", env.Images.Picture(b.Image)),
					item("Title", view.Text(b.Title)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Link", view.Link(b.Link, "")),
					item("Position", view.Int(b.Position)),
					item("Active", view.Bool(b.IsActive)),
				}},
				timestampsSection(b.CreatedAt, b.UpdatedAt, env),
				systemSection(b.ID),
			}
		},
		ID:   func(b Banner) string { return b.ID },
		Name: func(b Banner) string { return b.Title },
		ToForm: func(b Banner) BannerForm {
			return BannerForm{Title: b.Title, Link: b.Link, IsActive: b.IsActive, Position: b.Position}
		},
		RemoteImages: func(b Banner) map[string][]string { return imageSlot("image", b.Image) },
	}
}
