// Package screen turns a resource Definition into the uniform CRUD screens:
// list, create and edit forms, detail modal and confirmation dialogs.
package screen

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/audit"
	"bssaj-admin/internal/cache"
	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/images"
	"bssaj-admin/internal/metrics"
	"bssaj-admin/internal/status"
	"bssaj-admin/internal/view"

	"github.com/go-chi/chi/v5"
)

// Env is what cell and section builders may read while rendering.
type Env struct {
	Images *images.Allowlist
	Now    time.Time
}

type Column[T any] struct {
	Label string
	Cell  func(item T, env Env) view.Cell
}

type Filter struct {
	Key     string
	Label   string
	Options []form.Option
	// OptionsFrom names a lookup resolved through Deps.Lookups.
	OptionsFrom string
}

// CollectionAction is a POST to /{collection}/{Path} on the API, such as
// payments mark-overdue.
type CollectionAction struct {
	Name    string
	Label   string
	Path    string
	Success string
	Failure string
}

// Transitions describes a status field an admin may change freely.
type Transitions[T any] struct {
	Field   string
	Current func(item T) string
	Options func(item T) []string
	Set     status.Set
}

// Definition is everything a resource supplies; the screen does the rest.
type Definition[T any, F any] struct {
	Collection string
	Singular   string
	Plural     string

	Fields   []form.Field
	Columns  []Column[T]
	Filters  []Filter
	Sections func(item T, env Env) []detail.Section
	Body     form.BodyKind
	// Invalidates lists collections that embed this one's records; their
	// cached pages are dropped on every mutation here.
	Invalidates []string

	ID   func(item T) string
	Name func(item T) string
	// ToForm maps a fetched record onto the form used to edit it.
	ToForm func(item T) F
	// RemoteImages lists the images already stored for each file slot.
	RemoteImages func(item T) map[string][]string
	// Prepare normalises a bound form before it is validated, e.g. slugs.
	Prepare func(f *F)
	// Autofill fills blank fields from related records before submit.
	Autofill func(ctx context.Context, f *F) error

	// Approval enables approve and reject; Pending offers both actions.
	Approval        func(item T) status.Approval
	ApprovalPayload func(approve bool) any
	Transitions     *Transitions[T]
	Actions         []CollectionAction
}

// Lookups resolves named option sources such as "users" or "agencies".
type Lookups interface {
	Options(ctx context.Context, source string) ([]form.Option, error)
}

type Deps struct {
	Client       *apiclient.Client
	Cache        cache.Cache
	CacheTTL     time.Duration
	Binder       *form.Binder
	Encoder      *form.Encoder
	Previews     *form.PreviewStore
	Images       *images.Allowlist
	Audit        audit.Recorder
	Renderer     *Renderer
	Lookups      Lookups
	Log          *slog.Logger
	Metrics      *metrics.Collector
	CookieSecure bool
	// MaxFileBytes bounds one uploaded file; MaxRequestBytes the whole
	// form submission. Zero selects the package defaults.
	MaxFileBytes    int64
	MaxRequestBytes int64
	// CheckOrigin guards the live search upgrade.
	CheckOrigin func(r *http.Request) bool
	Now         func() time.Time
}

type NavItem struct {
	Label string
	Href  string
}

// Module is a mounted resource screen.
type Module interface {
	Mount(r chi.Router)
	Nav() NavItem
}
