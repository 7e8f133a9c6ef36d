// Package resources declares the BSSAJ collections managed by the dashboard.
// Each file supplies one screen.Definition: the record decoded from the API,
// the form bound from posted values, and how both are laid out.
package resources

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/listview"
	"bssaj-admin/internal/lookup"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/status"
	"bssaj-admin/internal/view"
)

// Option sources resolved by Lookups.
const (
	SourceUsers    = "users"
	SourceAgencies = "agencies"
)

// Ref is a nested reference such as approved_by.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AgencyRef is the agency embedded in certifications, jobs and members.
type AgencyRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Logo  string `json:"logo,omitempty"`
	Email string `json:"email,omitempty"`
}

// Modules builds every resource screen in navigation order. The lookups
// used by forms and filters are wired into deps here.
func Modules(deps screen.Deps) []screen.Module {
	lookups := NewLookups(deps)
	deps.Lookups = lookups
	return []screen.Module{
		screen.New(agencyDefinition(), deps),
		screen.New(bannerDefinition(), deps),
		screen.New(blogDefinition(), deps),
		screen.New(certificationDefinition(), deps),
		screen.New(committeeDefinition(), deps),
		screen.New(consultationDefinition(), deps),
		screen.New(eventDefinition(), deps),
		screen.New(galleryDefinition(), deps),
		screen.New(jobDefinition(), deps),
		screen.New(memberDefinition(lookups), deps),
		screen.New(newsDefinition(), deps),
		screen.New(paymentDefinition(), deps),
		screen.New(scholarshipDefinition(), deps),
		screen.New(userDefinition(), deps),
	}
}

// Collections lists the collection names of Modules, for the activity filter.
func Collections() []form.Option {
	names := []string{"agencies", "banners", "blogs", "certifications", "committees", "consultations",
		"events", "gallery", "jobs", "members", "news", "payments", "scholarships", "users", "session"}
	out := make([]form.Option, 0, len(names))
	for _, n := range names {
		out = append(out, form.Option{Value: n, Label: titleWords(n)})
	}
	return out
}

// Lookups resolves option sources from the API. Every call builds its table
// from a fresh (cached) list; nothing is kept between requests.
type Lookups struct {
	users    *apiclient.Cached[User]
	agencies *apiclient.Cached[Agency]
}

func NewLookups(deps screen.Deps) *Lookups {
	return &Lookups{
		users:    apiclient.NewCached(apiclient.NewCollection[User](deps.Client, "users"), deps.Cache, deps.CacheTTL, deps.Log, deps.Metrics),
		agencies: apiclient.NewCached(apiclient.NewCollection[Agency](deps.Client, "agencies"), deps.Cache, deps.CacheTTL, deps.Log, deps.Metrics),
	}
}

// maxLookupPages bounds how many API pages one lookup walks.
const maxLookupPages = 50

func lookupQuery(page int) url.Values {
	return url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(listview.MaxLimit)}}
}

// listAll walks the collection page by page until meta.total records are read.
func listAll[T any](ctx context.Context, col *apiclient.Cached[T]) ([]T, error) {
	var all []T
	for n := 1; n <= maxLookupPages; n++ {
		page, err := col.List(ctx, lookupQuery(n))
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if len(page.Data) == 0 || len(all) >= page.Meta.Total {
			return all, nil
		}
	}
	return nil, fmt.Errorf("%s lookup: more than %d pages", col.Name(), maxLookupPages)
}

// Users loads the user table a member form autofills from.
func (l *Lookups) Users(ctx context.Context) (lookup.Table[string, User], error) {
	users, err := listAll(ctx, l.users)
	if err != nil {
		return lookup.Table[string, User]{}, err
	}
	return lookup.FromSlice(users, func(u User) string { return u.ID }), nil
}

func (l *Lookups) Agencies(ctx context.Context) (lookup.Table[string, Agency], error) {
	agencies, err := listAll(ctx, l.agencies)
	if err != nil {
		return lookup.Table[string, Agency]{}, err
	}
	return lookup.FromSlice(agencies, func(a Agency) string { return a.ID }), nil
}

func (l *Lookups) Options(ctx context.Context, source string) ([]form.Option, error) {
	var opts []form.Option
	switch source {
	case SourceUsers:
		users, err := l.Users(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range users.Values() {
			label := u.Name
			if u.Email != "" {
				label += " (" + u.Email + ")"
			}
			opts = append(opts, form.Option{Value: u.ID, Label: label})
		}
	case SourceAgencies:
		agencies, err := l.Agencies(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range agencies.Values() {
			opts = append(opts, form.Option{Value: a.ID, Label: a.Name})
		}
	default:
		return nil, nil
	}
	sort.SliceStable(opts, func(i, j int) bool {
		return strings.ToLower(opts[i].Label) < strings.ToLower(opts[j].Label)
	})
	return opts, nil
}

func options(values ...string) []form.Option {
	out := make([]form.Option, 0, len(values))
	for _, v := range values {
		out = append(out, form.Option{Value: v, Label: titleWords(v)})
	}
	return out
}

// approvalOptions filter moderated collections by their derived state.
var approvalOptions = options(string(status.Pending), string(status.Approved), string(status.Rejected))

func titleWords(s string) string {
	words := strings.Fields(strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func item(label string, cell view.Cell) detail.Item {
	return detail.Item{Label: label, Cell: cell}
}

func timestampsSection(created, updated *time.Time, env screen.Env) detail.Section {
	return detail.Section{Title: detail.SectionTimestamps, Items: []detail.Item{
		item("Created", view.Timestamp(created, env.Now)),
		item("Updated", view.Timestamp(updated, env.Now)),
	}}
}

func systemSection(id string, extra ...detail.Item) detail.Section {
	items := append([]detail.Item{item("ID", view.Text(id))}, extra...)
	return detail.Section{Title: detail.SectionSystem, Items: items}
}

func approvalSection(a status.Approval, approvedAt *time.Time, by Ref, env screen.Env) detail.Section {
	return detail.Section{Title: detail.SectionStatus, Items: []detail.Item{
		item("Approval", view.BadgeCell(a.Badge())),
		item("Approved at", view.Timestamp(approvedAt, env.Now)),
		item("Approved by", view.Text(by.Name)),
	}}
}

func agencyCell(a AgencyRef, env screen.Env) view.Cell {
	if a.Name == "" {
		return view.Text("")
	}
	return env.Images.Avatar(a.Logo, a.Name)
}

// imageSlot lists a single stored image for a file slot, if present.
func imageSlot(slot, url string) map[string][]string {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	return map[string][]string{slot: {url}}
}

func approvalOf(approvedAt *time.Time, st string) status.Approval {
	return status.DeriveApproval(approvedAt, st)
}
