package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/utils"
	"bssaj-admin/internal/view"
)

type News struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"cover_image"`
	PublishedAt *time.Time `json:"published_at"`
	Author      Ref        `json:"author"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type NewsForm struct {
	Title       string    `form:"title" validate:"required,min=5,max=200"`
	Slug        string    `form:"slug" validate:"omitempty,max=220"`
	Summary     string    `form:"summary" validate:"max=500"`
	Content     string    `form:"content" validate:"required,min=20"`
	PublishedAt form.Date `form:"published_at"`
}

func newsDefinition() screen.Definition[News, NewsForm] {
	return screen.Definition[News, NewsForm]{
		Collection: "news",
		Singular:   "News article",
		Plural:     "News",
		Body:       form.BodyMultipart,
		Fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.KindText, Required: true},
			{Name: "slug", Label: "Slug", Kind: form.KindText, Help: "Left blank, it is derived from the title."},
			{Name: "summary", Label: "Summary", Kind: form.KindTextarea},
			{Name: "content", Label: "Content", Kind: form.KindRichText, Required: true},
			{Name: "published_at", Label: "Publish date", Kind: form.KindDate},
			{Name: "cover_image", Label: "Cover image", Kind: form.KindFile},
		},
		Columns: []screen.Column[News]{
			{Label: "Cover", Cell: func(n News, env screen.Env) view.Cell { return env.Images.Picture(n.CoverImage) }},
			{Label: "Title", Cell: func(n News, _ screen.Env) view.Cell { return view.Truncated(n.Title, 60) }},
			{Label: "Author", Cell: func(n News, _ screen.Env) view.Cell { return view.Text(n.Author.Name) }},
			{Label: "Published", Cell: func(n News, _ screen.Env) view.Cell { return view.Date(n.PublishedAt) }},
		},
		Sections: func(n News, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Cover", env.Images.Picture(n.CoverImage)),
					item("Title", view.Text(n.Title)),
					item("Slug", view.Text(n.Slug)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Summary", view.Text(n.Summary)),
					item("Content", view.RichText(n.Content, 800)),
					item("Published", view.Date(n.PublishedAt)),
				}},
				{Title: detail.SectionRelationships, Items: []detail.Item{
					item("Author", view.Text(n.Author.Name)),
				}},
				timestampsSection(n.CreatedAt, n.UpdatedAt, env),
				systemSection(n.ID),
			}
		},
		ID:   func(n News) string { return n.ID },
		Name: func(n News) string { return n.Title },
		ToForm: func(n News) NewsForm {
			return NewsForm{
				Title:       n.Title,
				Slug:        n.Slug,
				Summary:     n.Summary,
				Content:     n.Content,
				PublishedAt: dateOf(n.PublishedAt),
			}
		},
		RemoteImages: func(n News) map[string][]string { return imageSlot("cover_image", n.CoverImage) },
		Prepare: func(f *NewsForm) {
			if f.Slug == "" {
				f.Slug = f.Title
			}
			f.Slug = utils.Slugify(f.Slug)
		},
	}
}
