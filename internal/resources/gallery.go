package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

var galleryCategories = options("EVENT", "CEREMONY", "SEMINAR", "CULTURAL", "OTHER")

type GalleryItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Image       string     `json:"image"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type GalleryForm struct {
	Title       string `form:"title" validate:"required,min=2,max=150"`
	Description string `form:"description" validate:"max=1000"`
	Category    string `form:"category" validate:"required,oneof=EVENT CEREMONY SEMINAR CULTURAL OTHER"`
}

func galleryDefinition() screen.Definition[GalleryItem, GalleryForm] {
	return screen.Definition[GalleryItem, GalleryForm]{
		Collection: "gallery",
		Singular:   "Gallery item",
		Plural:     "Gallery",
		Body:       form.BodyMultipart,
		Fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.KindText, Required: true},
			{Name: "description", Label: "Description", Kind: form.KindTextarea},
			{Name: "category", Label: "Category", Kind: form.KindSelect, Options: galleryCategories, Required: true},
			{Name: "image", Label: "Image", Kind: form.KindFile, Required: true},
		},
		Columns: []screen.Column[GalleryItem]{
			{Label: "Image", Cell: func(g GalleryItem, env screen.Env) view.Cell { return env.Images.Picture(g.Image) }},
			{Label: "Title", Cell: func(g GalleryItem, _ screen.Env) view.Cell { return view.Truncated(g.Title, 60) }},
			{Label: "Category", Cell: func(g GalleryItem, _ screen.Env) view.Cell { return view.Text(titleWords(g.Category)) }},
			{Label: "Added", Cell: func(g GalleryItem, _ screen.Env) view.Cell { return view.Date(g.CreatedAt) }},
		},
		Filters: []screen.Filter{{Key: "category", Label: "Category", Options: galleryCategories}},
		Sections: func(g GalleryItem, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Image", env.Images.Picture(g.Image)),
					item("Title", view.Text(g.Title)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Category", view.Text(titleWords(g.Category))),
					item("Description", view.Text(g.Description)),
				}},
				timestampsSection(g.CreatedAt, g.UpdatedAt, env),
				systemSection(g.ID),
			}
		},
		ID:   func(g GalleryItem) string { return g.ID },
		Name: func(g GalleryItem) string { return g.Title },
		ToForm: func(g GalleryItem) GalleryForm {
			return GalleryForm{Title: g.Title, Description: g.Description, Category: g.Category}
		},
		RemoteImages: func(g GalleryItem) map[string][]string { return imageSlot("image", g.Image) },
	}
}
