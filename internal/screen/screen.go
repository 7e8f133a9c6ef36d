package screen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/audit"
	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/listview"
	"bssaj-admin/internal/live"
	"bssaj-admin/internal/middleware"
	"bssaj-admin/internal/view"

	"github.com/go-chi/chi/v5"
)

const (
	fetchTimeout           = 10 * time.Second
	submitTimeout          = 30 * time.Second
	multipartMemory        = 8 << 20
	defaultMaxFileBytes    = 10 << 20
	defaultMaxRequestBytes = 64 << 20
	pagerRadius            = 2
)

// ReturnField carries the list query through forms and dialogs.
const ReturnField = "_return"

type Screen[T any, F any] struct {
	def      Definition[T, F]
	deps     Deps
	col      *apiclient.Cached[T]
	inflight *inflight
	live     *live.Handler[T]
}

func New[T any, F any](def Definition[T, F], deps Deps) *Screen[T, F] {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Audit == nil {
		deps.Audit = audit.Nop{}
	}
	if deps.Log == nil {
		deps.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.MaxFileBytes <= 0 {
		deps.MaxFileBytes = defaultMaxFileBytes
	}
	if deps.MaxRequestBytes <= 0 {
		deps.MaxRequestBytes = defaultMaxRequestBytes
	}
	col := apiclient.NewCollection[T](deps.Client, def.Collection)
	s := &Screen[T, F]{
		def:      def,
		deps:     deps,
		col:      apiclient.NewCached(col, deps.Cache, deps.CacheTTL, deps.Log, deps.Metrics).Cascade(def.Invalidates...),
		inflight: newInflight(),
	}
	s.live = s.newLive()
	return s
}

func (s *Screen[T, F]) Nav() NavItem {
	return NavItem{Label: s.def.Plural, Href: s.base()}
}

// Collection exposes the cached API collection behind the screen.
func (s *Screen[T, F]) Collection() *apiclient.Cached[T] {
	return s.col
}

func (s *Screen[T, F]) Mount(r chi.Router) {
	r.Route(s.base(), func(r chi.Router) {
		r.Get("/", s.List)
		r.Get("/live", s.Live)
		r.Get("/new", s.NewForm)
		r.Post("/new", s.Create)
		r.Post("/validate", s.ValidateField)
		r.Post("/actions/{action}", s.CollectionAction)
		r.Get("/{id}/edit", s.EditForm)
		r.Post("/{id}/edit", s.Update)
		r.Post("/{id}/delete", s.Delete)
		if s.def.Approval != nil {
			r.Post("/{id}/approve", s.Approve)
			r.Post("/{id}/reject", s.Reject)
		}
		if s.def.Transitions != nil {
			r.Post("/{id}/status", s.SetStatus)
		}
	})
}

func (s *Screen[T, F]) base() string {
	return "/" + s.def.Collection
}

func (s *Screen[T, F]) logWithRequest(r *http.Request) *slog.Logger {
	log := s.deps.Log.With(slog.String("collection", s.def.Collection))
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return log.With(slog.String("request_id", id))
	}
	return log
}

func (s *Screen[T, F]) env() Env {
	return Env{Images: s.deps.Images, Now: s.deps.Now()}
}

func (s *Screen[T, F]) layout(w http.ResponseWriter, r *http.Request, title string) Layout {
	return Layout{
		Title:  title,
		Active: s.base(),
		Toast:  TakeFlash(w, r, s.deps.CookieSecure),
		Actor:  middleware.ActorFromContext(r.Context()),
	}
}

func (s *Screen[T, F]) filterKeys() []string {
	keys := make([]string, 0, len(s.def.Filters))
	for _, f := range s.def.Filters {
		keys = append(keys, f.Key)
	}
	return keys
}

// listURL builds a list link for q plus optional overlay params.
func (s *Screen[T, F]) listURL(q listview.Query, extra ...string) string {
	values := q.Values()
	if q.Page <= 1 {
		values.Del("page")
	}
	if q.Limit == listview.DefaultLimit {
		values.Del("limit")
	}
	for i := 0; i+1 < len(extra); i += 2 {
		values.Set(extra[i], extra[i+1])
	}
	if len(values) == 0 {
		return s.base()
	}
	return s.base() + "?" + values.Encode()
}

// returnQuery recovers the list query a form or dialog was opened from.
func (s *Screen[T, F]) returnQuery(r *http.Request) listview.Query {
	values, err := url.ParseQuery(r.PostFormValue(ReturnField))
	if err != nil {
		return listview.DefaultQuery()
	}
	return listview.ParseQuery(values, s.filterKeys())
}

func (s *Screen[T, F]) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Screen[T, F]) record(r *http.Request, action, id string, err error, message string) {
	entry := audit.Entry{
		Resource:   s.def.Collection,
		ResourceID: id,
		Action:     action,
		Actor:      middleware.ActorFromContext(r.Context()),
		Outcome:    audit.OutcomeSuccess,
		Message:    message,
		RequestID:  middleware.RequestIDFromContext(r.Context()),
	}
	if err != nil {
		entry.Outcome = audit.OutcomeFailure
	}
	s.deps.Audit.Record(r.Context(), entry)
}

func (s *Screen[T, F]) lower(name string) string {
	return strings.ToLower(name)
}

type filterView struct {
	Key     string
	Label   string
	Value   string
	Options []form.Option
}

type rowAction struct {
	Label string
	Href  string
	Post  bool
	Tone  view.Tone
	// View is the id the live channel opens in place of following Href.
	View string
	// Fields are extra hidden inputs of a POST action.
	Fields map[string]string
}

type rowView struct {
	ID      string
	Cells   []view.Cell
	Actions []rowAction
}

type pagerLink struct {
	N       int
	URL     string
	Current bool
	Gap     bool
}

type pagerView struct {
	Pages   []pagerLink
	PrevURL string
	NextURL string
	First   int
	Last    int
	Total   int
}

type modalView struct {
	Phase    detail.Phase
	ID       string
	Title    string
	Message  string
	Sections []detail.Section
	CloseURL string
	Actions  []rowAction
}

type dialogView struct {
	Title        string
	Description  string
	ItemName     string
	Action       string
	CancelURL    string
	ConfirmLabel string
	BusyLabel    string
	Return       string
}

type listPage struct {
	Collection string
	Singular   string
	Plural     string
	Query      listview.Query
	Return     string
	Filters    []filterView
	Columns    []string
	Rows       []rowView
	Pager      pagerView
	NoResults  bool
	NoItems    bool
	ClearURL   string
	NewURL     string
	Error      string
	RetryURL   string
	Actions    []CollectionAction
	Modal      *modalView
	Dialog     *dialogView
	LiveURL    string
}

func (s *Screen[T, F]) List(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	q := listview.ParseQuery(r.URL.Query(), s.filterKeys())
	sel := ParseSelection(r.URL.Query())

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	page, err := s.col.List(ctx, q.Values())
	data := s.listData(ctx, q)
	if err != nil {
		log.Error(s.def.Collection+" list: api error", slog.String("error", err.Error()))
		data.Error = apiclient.MessageOr(err, fmt.Sprintf("Failed to load %s", s.lower(s.def.Plural)))
		data.RetryURL = s.listURL(q)
	} else {
		p := listview.NewPagination(q, page.Meta.Total)
		if clamped := p.Clamp(q.Page); clamped != q.Page {
			s.redirect(w, r, s.listURL(q.WithPage(clamped)))
			return
		}
		s.fillRows(&data, q, page)
		log.Info(s.def.Collection+" list: ok", slog.Int("count", len(page.Data)), slog.Int("total", page.Meta.Total))
	}

	switch {
	case sel.Delete != "":
		data.Dialog = s.deleteDialog(ctx, q, sel.Delete, page.Data)
	case sel.Reject != "" && s.def.Approval != nil:
		data.Dialog = s.rejectDialog(ctx, q, sel.Reject, page.Data)
	case sel.View != "":
		data.Modal = s.modal(ctx, q, sel.View)
	}

	if err := s.deps.Renderer.Render(w, http.StatusOK, "list", s.layout(w, r, s.def.Plural), data); err != nil {
		log.Error(s.def.Collection+" list: render error", slog.String("error", err.Error()))
	}
}

func (s *Screen[T, F]) listData(ctx context.Context, q listview.Query) listPage {
	data := listPage{
		Collection: s.def.Collection,
		Singular:   s.def.Singular,
		Plural:     s.def.Plural,
		Query:      q,
		Return:     q.Encode(),
		ClearURL:   s.base(),
		NewURL:     s.base() + "/new",
		Actions:    s.def.Actions,
		LiveURL:    s.base() + "/live",
	}
	for _, c := range s.def.Columns {
		data.Columns = append(data.Columns, c.Label)
	}
	for _, f := range s.def.Filters {
		fv := filterView{Key: f.Key, Label: f.Label, Value: q.Filter(f.Key), Options: f.Options}
		if f.OptionsFrom != "" && s.deps.Lookups != nil {
			opts, err := s.deps.Lookups.Options(ctx, f.OptionsFrom)
			if err != nil {
				s.deps.Log.Warn(s.def.Collection+" list: lookup error", slog.String("source", f.OptionsFrom), slog.String("error", err.Error()))
			}
			fv.Options = opts
		}
		data.Filters = append(data.Filters, fv)
	}
	return data
}

func (s *Screen[T, F]) fillRows(data *listPage, q listview.Query, page apiclient.Page[T]) {
	env := s.env()
	for _, item := range page.Data {
		row := rowView{ID: s.def.ID(item)}
		for _, c := range s.def.Columns {
			row.Cells = append(row.Cells, c.Cell(item, env))
		}
		row.Actions = s.rowActions(q, item)
		data.Rows = append(data.Rows, row)
	}

	switch listview.EmptyState(page.Meta.Total, q) {
	case listview.EmptyNoResults:
		data.NoResults = true
	case listview.EmptyNoResources:
		data.NoItems = true
	}

	data.Pager = buildPager(q, page.Meta.Total, func(q listview.Query) string { return s.listURL(q) })
}

func buildPager(q listview.Query, total int, link func(listview.Query) string) pagerView {
	p := listview.NewPagination(q, total)
	pager := pagerView{First: p.First(), Last: p.Last(), Total: p.Total}
	if p.TotalPages() <= 1 {
		return pager
	}
	for _, n := range p.Window(pagerRadius) {
		if n == 0 {
			pager.Pages = append(pager.Pages, pagerLink{Gap: true})
			continue
		}
		pager.Pages = append(pager.Pages, pagerLink{N: n, URL: link(q.WithPage(n)), Current: n == q.Page})
	}
	if p.HasPrev() {
		pager.PrevURL = link(q.WithPage(q.Page - 1))
	}
	if p.HasNext() {
		pager.NextURL = link(q.WithPage(q.Page + 1))
	}
	return pager
}

func (s *Screen[T, F]) rowActions(q listview.Query, item T) []rowAction {
	id := s.def.ID(item)
	ret := q.Encode()
	actions := []rowAction{
		{Label: "View", Href: s.listURL(q, "view", id), View: id},
		{Label: "Edit", Href: s.base() + "/" + url.PathEscape(id) + "/edit?" + url.Values{ReturnField: {ret}}.Encode()},
	}
	actions = append(actions, s.approvalActions(q, item)...)
	if t := s.def.Transitions; t != nil {
		for _, to := range t.Options(item) {
			actions = append(actions, rowAction{
				Label:  "Mark " + t.Set.Badge(to).Label,
				Href:   s.base() + "/" + url.PathEscape(id) + "/status",
				Post:   true,
				Fields: map[string]string{"status": to, ReturnField: ret},
			})
		}
	}
	actions = append(actions, rowAction{Label: "Delete", Href: s.listURL(q, "delete", id), Tone: view.ToneDanger})
	return actions
}

// approvalActions are offered only while the item is pending.
func (s *Screen[T, F]) approvalActions(q listview.Query, item T) []rowAction {
	if s.def.Approval == nil || !s.def.Approval(item).Actionable() {
		return nil
	}
	id := s.def.ID(item)
	return []rowAction{
		{
			Label:  "Approve",
			Href:   s.base() + "/" + url.PathEscape(id) + "/approve",
			Post:   true,
			Tone:   view.ToneSuccess,
			Fields: map[string]string{ReturnField: q.Encode()},
		},
		{Label: "Reject", Href: s.listURL(q, "reject", id), Tone: view.ToneDanger},
	}
}

func (s *Screen[T, F]) modal(ctx context.Context, q listview.Query, id string) *modalView {
	st := detail.Load(ctx, detail.Modal{ID: id, Open: true}, s.col.Get, fmt.Sprintf("Failed to load %s", s.lower(s.def.Singular)))
	mv := &modalView{
		Phase:    st.Phase,
		ID:       st.ID,
		Title:    s.def.Singular + " details",
		Message:  st.Message,
		CloseURL: s.listURL(q),
	}
	if st.Ready() {
		mv.Title = s.def.Name(st.Item)
		if s.def.Sections != nil {
			mv.Sections = detail.Compact(s.def.Sections(st.Item, s.env()))
		}
		mv.Actions = s.approvalActions(q, st.Item)
	}
	return mv
}

// skeleton renders the layout of a detail modal before its record arrives.
func (s *Screen[T, F]) skeleton(id string) *modalView {
	var zero T
	mv := &modalView{Phase: detail.PhaseLoading, ID: id, Title: s.def.Singular + " details"}
	if s.def.Sections != nil {
		mv.Sections = detail.Skeleton(s.def.Sections(zero, s.env()))
	}
	return mv
}

// itemName finds a display name for id, preferring the rows already loaded.
func (s *Screen[T, F]) itemName(ctx context.Context, id string, rows []T) string {
	for _, item := range rows {
		if s.def.ID(item) == id {
			return s.def.Name(item)
		}
	}
	if item, err := s.col.Get(ctx, id); err == nil {
		return s.def.Name(item)
	}
	return id
}

func (s *Screen[T, F]) deleteDialog(ctx context.Context, q listview.Query, id string, rows []T) *dialogView {
	name := s.itemName(ctx, id, rows)
	return &dialogView{
		Title:        "Delete " + s.lower(s.def.Singular),
		Description:  "This permanently removes the " + s.lower(s.def.Singular) + ". This cannot be undone.",
		ItemName:     name,
		Action:       s.base() + "/" + url.PathEscape(id) + "/delete",
		CancelURL:    s.listURL(q),
		ConfirmLabel: "Delete",
		BusyLabel:    "Deleting...",
		Return:       q.Encode(),
	}
}

func (s *Screen[T, F]) rejectDialog(ctx context.Context, q listview.Query, id string, rows []T) *dialogView {
	name := s.itemName(ctx, id, rows)
	return &dialogView{
		Title:        "Reject " + s.lower(s.def.Singular),
		Description:  "The " + s.lower(s.def.Singular) + " will be marked as rejected.",
		ItemName:     name,
		Action:       s.base() + "/" + url.PathEscape(id) + "/reject",
		CancelURL:    s.listURL(q),
		ConfirmLabel: "Reject",
		BusyLabel:    "Rejecting...",
		Return:       q.Encode(),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, apiclient.ErrNotFound)
}
