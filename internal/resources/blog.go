package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/status"
	"bssaj-admin/internal/utils"
	"bssaj-admin/internal/view"
)

type Blog struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Excerpt    string     `json:"excerpt"`
	Content    string     `json:"content"`
	CoverImage string     `json:"cover_image"`
	Tags       string     `json:"tags"`
	Status     string     `json:"status"`
	Author     Ref        `json:"author"`
	ApprovedAt *time.Time `json:"approved_at"`
	ApprovedBy Ref        `json:"approved_by"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type BlogForm struct {
	Title   string `form:"title" validate:"required,min=5,max=200"`
	Slug    string `form:"slug" validate:"omitempty,max=220"`
	Excerpt string `form:"excerpt" validate:"max=500"`
	Content string `form:"content" validate:"required,min=20"`
	Tags    string `form:"tags" validate:"max=200"`
}

func blogDefinition() screen.Definition[Blog, BlogForm] {
	return screen.Definition[Blog, BlogForm]{
		Collection: "blogs",
		Singular:   "Blog",
		Plural:     "Blogs",
		Body:       form.BodyMultipart,
		Fields: []form.Field{
			{Name: "title", Label: "Title", Kind: form.KindText, Required: true},
			{Name: "slug", Label: "Slug", Kind: form.KindText, Help: "Left blank, it is derived from the title."},
			{Name: "excerpt", Label: "Excerpt", Kind: form.KindTextarea},
			{Name: "content", Label: "Content", Kind: form.KindRichText, Required: true},
			{Name: "tags", Label: "Tags", Kind: form.KindText, Placeholder: "study, visa, japan"},
			{Name: "cover_image", Label: "Cover image", Kind: form.KindFile},
		},
		Columns: []screen.Column[Blog]{
			{Label: "Cover", Cell: func(b Blog, env screen.Env) view.Cell { return env.Images.Picture(b.CoverImage) }},
			{Label: "Title", Cell: func(b Blog, _ screen.Env) view.Cell { return view.Truncated(b.Title, 60) }},
			{Label: "Author", Cell: func(b Blog, _ screen.Env) view.Cell { return view.Text(b.Author.Name) }},
			{Label: "Status", Cell: func(b Blog, _ screen.Env) view.Cell { return view.BadgeCell(blogApproval(b).Badge()) }},
			{Label: "Created", Cell: func(b Blog, _ screen.Env) view.Cell { return view.Date(b.CreatedAt) }},
		},
		Filters: []screen.Filter{{Key: "status", Label: "Status", Options: approvalOptions}},
		Sections: func(b Blog, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Cover", env.Images.Picture(b.CoverImage)),
					item("Title", view.Text(b.Title)),
					item("Slug", view.Text(b.Slug)),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Excerpt", view.Text(b.Excerpt)),
					item("Content", view.RichText(b.Content, 800)),
					item("Tags", view.Text(b.Tags)),
				}},
				{Title: detail.SectionRelationships, Items: []detail.Item{
					item("Author", view.Text(b.Author.Name)),
					item("Author email", view.Email(b.Author.Email)),
				}},
				approvalSection(blogApproval(b), b.ApprovedAt, b.ApprovedBy, env),
				timestampsSection(b.CreatedAt, b.UpdatedAt, env),
				systemSection(b.ID),
			}
		},
		ID:   func(b Blog) string { return b.ID },
		Name: func(b Blog) string { return b.Title },
		ToForm: func(b Blog) BlogForm {
			return BlogForm{Title: b.Title, Slug: b.Slug, Excerpt: b.Excerpt, Content: b.Content, Tags: b.Tags}
		},
		RemoteImages: func(b Blog) map[string][]string { return imageSlot("cover_image", b.CoverImage) },
		Prepare: func(f *BlogForm) {
			if f.Slug == "" {
				f.Slug = utils.Slugify(f.Title)
			} else {
				f.Slug = utils.Slugify(f.Slug)
			}
		},
		Approval: blogApproval,
	}
}

func blogApproval(b Blog) status.Approval {
	return approvalOf(b.ApprovedAt, b.Status)
}
