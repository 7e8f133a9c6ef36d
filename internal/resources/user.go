package resources

import (
	"time"

	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/view"
)

var userRoles = options("ADMIN", "AGENCY", "STUDENT", "USER")

type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Role           string     `json:"role"`
	ProfilePicture string     `json:"profile_picture"`
	IsVerified     bool       `json:"is_verified"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

type UserForm struct {
	Name       string `form:"name" validate:"required,min=2,max=100"`
	Email      string `form:"email" validate:"required,email"`
	Phone      string `form:"phone" validate:"omitempty,phone"`
	Role       string `form:"role" validate:"required,oneof=ADMIN AGENCY STUDENT USER"`
	Password   string `form:"password" validate:"omitempty,min=8,max=72"`
	IsVerified bool   `form:"is_verified"`
}

func userDefinition() screen.Definition[User, UserForm] {
	return screen.Definition[User, UserForm]{
		Collection: "users",
		Singular:   "User",
		Plural:     "Users",
		Body:       form.BodyMultipart,
		// Records that embed this one by reference.
		Invalidates: []string{"agencies", "blogs", "jobs", "members", "news", "payments"},
		Fields: []form.Field{
			{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
			{Name: "email", Label: "Email", Kind: form.KindEmail, Required: true},
			{Name: "phone", Label: "Phone", Kind: form.KindText},
			{Name: "role", Label: "Role", Kind: form.KindSelect, Options: userRoles, Required: true},
			{Name: "password", Label: "Password", Kind: form.KindPassword, Help: "At least 8 characters.", CreateOnly: true},
			{Name: "is_verified", Label: "Verified", Kind: form.KindCheckbox},
			{Name: "profile_picture", Label: "Profile picture", Kind: form.KindFile},
		},
		Columns: []screen.Column[User]{
			{Label: "User", Cell: func(u User, env screen.Env) view.Cell { return env.Images.Avatar(u.ProfilePicture, u.Name) }},
			{Label: "Email", Cell: func(u User, _ screen.Env) view.Cell { return view.Email(u.Email) }},
			{Label: "Role", Cell: func(u User, _ screen.Env) view.Cell { return view.Text(titleWords(u.Role)) }},
			{Label: "Verified", Cell: func(u User, _ screen.Env) view.Cell { return view.Bool(u.IsVerified) }},
			{Label: "Joined", Cell: func(u User, _ screen.Env) view.Cell { return view.Date(u.CreatedAt) }},
		},
		Filters: []screen.Filter{{Key: "role", Label: "Role", Options: userRoles}},
		Sections: func(u User, env screen.Env) []detail.Section {
			return []detail.Section{
				{Title: detail.SectionIdentity, Items: []detail.Item{
					item("Picture", env.Images.Avatar(u.ProfilePicture, u.Name)),
					item("Name", view.Text(u.Name)),
					item("Role", view.Text(titleWords(u.Role))),
				}},
				{Title: detail.SectionDetails, Items: []detail.Item{
					item("Email", view.Email(u.Email)),
					item("Phone", view.Text(u.Phone)),
					item("Verified", view.Bool(u.IsVerified)),
					item("Last login", view.Timestamp(u.LastLoginAt, env.Now)),
				}},
				timestampsSection(u.CreatedAt, u.UpdatedAt, env),
				systemSection(u.ID),
			}
		},
		ID:   func(u User) string { return u.ID },
		Name: func(u User) string { return u.Name },
		ToForm: func(u User) UserForm {
			return UserForm{Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role, IsVerified: u.IsVerified}
		},
		RemoteImages: func(u User) map[string][]string { return imageSlot("profile_picture", u.ProfilePicture) },
	}
}
