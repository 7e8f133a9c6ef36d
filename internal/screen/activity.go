package screen

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bssaj-admin/internal/audit"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/listview"
	"bssaj-admin/internal/middleware"
	"bssaj-admin/internal/view"

	"github.com/go-chi/chi/v5"
)

const activityPath = "/activity"

// ActivityLog is the read side of the audit trail.
type ActivityLog interface {
	List(ctx context.Context, filter audit.ListFilter, limit, offset int64) ([]audit.Entry, int64, error)
}

// Activity lists recorded admin actions. A nil Source renders a notice that
// the log is not configured.
type Activity struct {
	Source       ActivityLog
	Resources    []form.Option
	Renderer     *Renderer
	Log          *slog.Logger
	CookieSecure bool
	Now          func() time.Time
}

type activityRow struct {
	When       view.Cell
	Resource   string
	ResourceID string
	Action     string
	Actor      string
	Outcome    view.Badge
	Message    string
}

type activityPage struct {
	Enabled  bool
	Filters  []filterView
	Query    listview.Query
	Rows     []activityRow
	Pager    pagerView
	Error    string
	NoItems  bool
	ClearURL string
}

var outcomes = []form.Option{
	{Value: string(audit.OutcomeSuccess), Label: "Success"},
	{Value: string(audit.OutcomeFailure), Label: "Failure"},
}

func (a *Activity) Mount(r chi.Router) {
	r.Get(activityPath, a.List)
}

func (a *Activity) Nav() NavItem {
	return NavItem{Label: "Activity", Href: activityPath}
}

func (a *Activity) List(w http.ResponseWriter, r *http.Request) {
	log := a.Log
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	q := listview.ParseQuery(r.URL.Query(), []string{"resource", "outcome"})
	data := activityPage{
		Enabled:  a.Source != nil,
		Query:    q,
		ClearURL: activityPath,
		Filters: []filterView{
			{Key: "resource", Label: "Resource", Value: q.Filter("resource"), Options: a.Resources},
			{Key: "outcome", Label: "Outcome", Value: q.Filter("outcome"), Options: outcomes},
		},
	}

	if a.Source != nil {
		filter := audit.ListFilter{Resource: q.Filter("resource"), Outcome: audit.Outcome(q.Filter("outcome"))}
		offset := int64((q.Page - 1) * q.Limit)
		entries, total, err := a.Source.List(r.Context(), filter, int64(q.Limit), offset)
		if err != nil {
			log.Error("activity list: db error", slog.String("error", err.Error()))
			data.Error = "Failed to load activity"
		} else {
			p := listview.NewPagination(q, int(total))
			if clamped := p.Clamp(q.Page); clamped != q.Page {
				http.Redirect(w, r, activityURL(q.WithPage(clamped)), http.StatusSeeOther)
				return
			}
			now := time.Now()
			if a.Now != nil {
				now = a.Now()
			}
			for _, e := range entries {
				data.Rows = append(data.Rows, activityRow{
					When:       view.Timestamp(&e.CreatedAt, now),
					Resource:   e.Resource,
					ResourceID: e.ResourceID,
					Action:     e.Action,
					Actor:      view.Text(e.Actor).Text,
					Outcome:    outcomeBadge(e.Outcome),
					Message:    e.Message,
				})
			}
			data.NoItems = total == 0
			data.Pager = buildPager(q, int(total), activityURL)
		}
	}

	layout := Layout{
		Title:  "Activity",
		Active: activityPath,
		Toast:  TakeFlash(w, r, a.CookieSecure),
		Actor:  middleware.ActorFromContext(r.Context()),
	}
	if err := a.Renderer.Render(w, http.StatusOK, "activity", layout, data); err != nil {
		log.Error("activity list: render error", slog.String("error", err.Error()))
	}
}

func activityURL(q listview.Query) string {
	values := q.Values()
	if q.Page <= 1 {
		values.Del("page")
	}
	if q.Limit == listview.DefaultLimit {
		values.Del("limit")
	}
	if len(values) == 0 {
		return activityPath
	}
	return activityPath + "?" + values.Encode()
}

func outcomeBadge(o audit.Outcome) view.Badge {
	if o == audit.OutcomeFailure {
		return view.Badge{Label: "Failure", Tone: view.ToneDanger}
	}
	return view.Badge{Label: "Success", Tone: view.ToneSuccess}
}
