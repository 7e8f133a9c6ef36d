package resources

import (
	"cmp"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/cache"
	"bssaj-admin/internal/detail"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/images"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/validation"

	"github.com/go-chi/chi/v5"
)

type request struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

// upstream is an in-memory BSSAJ API: records keyed by collection, each a
// raw JSON object with an "id".
type upstream struct {
	mu       sync.Mutex
	data     map[string][]map[string]any
	requests []request
}

func newUpstream() *upstream {
	return &upstream{data: map[string][]map[string]any{}}
}

func (u *upstream) seed(collection string, records ...map[string]any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.data[collection] = append(u.data[collection], records...)
}

func (u *upstream) find(method, path string) (request, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, r := range u.requests {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return request{}, false
}

func (u *upstream) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				raw, _ := io.ReadAll(r.Body)
				u.mu.Lock()
				u.requests = append(u.requests, request{
					Method:      r.Method,
					Path:        r.URL.Path,
					ContentType: r.Header.Get("Content-Type"),
					Body:        string(raw),
				})
				u.mu.Unlock()
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/{collection}", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		items := u.data[chi.URLParam(r, "collection")]
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page, limit = max(page, 1), cmp.Or(limit, 20)
		start := min((page-1)*limit, len(items))
		end := min(start+limit, len(items))
		json.NewEncoder(w).Encode(map[string]any{
			"data": append([]map[string]any{}, items[start:end]...),
			"meta": map[string]int{"total": len(items), "limit": limit},
		})
	})
	r.Get("/api/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		for _, item := range u.data[chi.URLParam(r, "collection")] {
			if item["id"] == chi.URLParam(r, "id") {
				json.NewEncoder(w).Encode(map[string]any{"data": item})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post("/api/{collection}/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/api/{collection}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"new1"}}`))
	})
	r.Patch("/api/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		items := u.data[chi.URLParam(r, "collection")]
		for _, item := range items {
			if item["id"] == chi.URLParam(r, "id") {
				if strings.Contains(u.requests[len(u.requests)-1].Body, `"is_approved":false`) {
					item["status"] = "REJECTED"
				}
				json.NewEncoder(w).Encode(map[string]any{"data": item})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

func newDashboard(t *testing.T, api *upstream) http.Handler {
	t.Helper()
	return newDashboardWith(t, api, nil)
}

// newDashboardWith lets a test adjust deps before the modules are built.
func newDashboardWith(t *testing.T, api *upstream, adjust func(*screen.Deps)) http.Handler {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	renderer, err := screen.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	store := cache.NewMemory(512, time.Hour)
	deps := screen.Deps{
		Client:   apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api"}),
		Cache:    store,
		CacheTTL: time.Minute,
		Binder:   form.NewBinder(validation.New()),
		Encoder:  form.NewEncoder(),
		Previews: form.NewPreviewStore(cache.NewMemoryBounded(64, 1<<20, time.Hour), time.Hour),
		Images:   images.NewAllowlist([]string{"cdn.bssaj.org"}),
		Renderer: renderer,
	}
	if adjust != nil {
		adjust(&deps)
	}
	r := chi.NewRouter()
	for _, m := range Modules(deps) {
		m.Mount(r)
	}
	return r
}

func post(h http.Handler, target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestBannerCreateSendsMultipartAndRedirects(t *testing.T) {
	api := newUpstream()
	h := newDashboard(t, api)

	rec := post(h, "/banners/new", url.Values{"title": {"Spring Sale"}, "link": {"https://bssaj.org/sale"}, "is_active": {"true"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/banners" {
		t.Fatalf("expected redirect to /banners, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	sent, ok := api.find(http.MethodPost, "/api/banners")
	if !ok {
		t.Fatalf("expected create request")
	}
	if !strings.HasPrefix(sent.ContentType, "multipart/form-data") {
		t.Fatalf("expected multipart body, got %q", sent.ContentType)
	}
	if !strings.Contains(sent.Body, "Spring Sale") || !strings.Contains(sent.Body, "https://bssaj.org/sale") {
		t.Fatalf("missing fields in body: %s", sent.Body)
	}
}

func TestJobRejectPatchesAndShowsRejected(t *testing.T) {
	api := newUpstream()
	api.seed("jobs", map[string]any{"id": "j1", "title": "Japanese Teacher", "type": "FULL_TIME", "status": "PENDING"})
	h := newDashboard(t, api)

	if body := get(h, "/jobs").Body.String(); !strings.Contains(body, "/jobs/j1/approve") {
		t.Fatalf("pending job must offer approve")
	}

	rec := post(h, "/jobs/j1/reject", url.Values{screen.ReturnField: {"type=FULL_TIME"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/jobs?type=FULL_TIME" {
		t.Fatalf("unexpected redirect %d %q", rec.Code, rec.Header().Get("Location"))
	}
	sent, ok := api.find(http.MethodPatch, "/api/jobs/j1")
	if !ok || strings.TrimSpace(sent.Body) != `{"is_approved":false}` {
		t.Fatalf("unexpected reject request %+v", sent)
	}

	body := get(h, "/jobs").Body.String()
	if !strings.Contains(body, `<span class="badge danger">Rejected</span>`) {
		t.Fatalf("expected rejected badge after the mutation")
	}
	if strings.Contains(body, "/jobs/j1/approve") {
		t.Fatalf("rejected job must not offer approve")
	}
}

func TestJobSalaryRangeValidated(t *testing.T) {
	api := newUpstream()
	h := newDashboard(t, api)

	rec := post(h, "/jobs/new", url.Values{
		"title":       {"Japanese Teacher"},
		"description": {"Teach Japanese to incoming students in Dhaka."},
		"location":    {"Dhaka"},
		"type":        {"FULL_TIME"},
		"salary_min":  {"5000"},
		"salary_max":  {"1000"},
		"deadline":    {"2026-12-01"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if _, ok := api.find(http.MethodPost, "/api/jobs"); ok {
		t.Fatalf("invalid job must not be sent")
	}
}

func TestMemberAutofillsFromSelectedUser(t *testing.T) {
	api := newUpstream()
	api.seed("users", map[string]any{"id": "u1", "name": "Aiko Tanaka", "email": "aiko@example.com"})
	h := newDashboard(t, api)

	rec := post(h, "/members/new", url.Values{"user_id": {"u1"}, "kind": {"GENERAL"}, "name": {""}, "email": {""}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	sent, ok := api.find(http.MethodPost, "/api/members")
	if !ok {
		t.Fatalf("expected create request")
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(sent.Body), &body); err != nil {
		t.Fatalf("member body is not JSON: %v", err)
	}
	if body["name"] != "Aiko Tanaka" || body["email"] != "aiko@example.com" {
		t.Fatalf("expected user details to be copied, got %v", body)
	}
}

func TestMemberAutofillKeepsTypedValues(t *testing.T) {
	api := newUpstream()
	api.seed("users", map[string]any{"id": "u1", "name": "Aiko Tanaka", "email": "aiko@example.com"})
	h := newDashboard(t, api)

	post(h, "/members/new", url.Values{"user_id": {"u1"}, "kind": {"GENERAL"}, "name": {"A. Tanaka"}, "email": {""}})
	sent, _ := api.find(http.MethodPost, "/api/members")
	if !strings.Contains(sent.Body, `"name":"A. Tanaka"`) || !strings.Contains(sent.Body, `"email":"aiko@example.com"`) {
		t.Fatalf("unexpected member body %s", sent.Body)
	}
}

func TestScholarshipEditPrefillsForm(t *testing.T) {
	api := newUpstream()
	api.seed("scholarships", map[string]any{
		"id": "s1", "title": "MEXT", "provider": "Government of Japan", "description": "Full tuition.",
		"start_year": 2024, "end_year": 2026, "deadline": "2026-05-31T00:00:00Z",
	})
	h := newDashboard(t, api)

	rec := get(h, "/scholarships/s1/edit")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`value="MEXT"`, `value="2024"`, `value="2026"`, `value="2026-05-31"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in edit form", want)
		}
	}
}

func TestScholarshipYearOrderValidated(t *testing.T) {
	h := newDashboard(t, newUpstream())
	rec := post(h, "/scholarships/new", url.Values{
		"title": {"MEXT"}, "provider": {"Japan"}, "description": {"Full tuition support."},
		"start_year": {"2025"}, "end_year": {"2024"},
	})
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "Must not be less than start year") {
		t.Fatalf("expected year order error, got %d", rec.Code)
	}
}

func TestPaymentDecisionsAndOverdueAction(t *testing.T) {
	api := newUpstream()
	api.seed("payments", map[string]any{"id": "p1", "amount": 5000, "currency": "JPY", "status": "OVERDUE"})
	h := newDashboard(t, api)

	post(h, "/payments/p1/approve", url.Values{})
	sent, ok := api.find(http.MethodPatch, "/api/payments/p1")
	if !ok || strings.TrimSpace(sent.Body) != `{"status":"PAID"}` {
		t.Fatalf("unexpected approve request %+v", sent)
	}

	rec := post(h, "/payments/actions/mark-overdue", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if _, ok := api.find(http.MethodPost, "/api/payments/mark-overdue"); !ok {
		t.Fatalf("expected mark-overdue request")
	}
}

func TestConsultationStatusTransition(t *testing.T) {
	api := newUpstream()
	api.seed("consultations", map[string]any{"id": "c1", "subject": "Visa", "status": "PENDING"})
	h := newDashboard(t, api)

	body := get(h, "/consultations").Body.String()
	if !strings.Contains(body, "Mark Resolved") || strings.Contains(body, "Mark Pending") {
		t.Fatalf("expected transitions away from the current status only")
	}
	post(h, "/consultations/c1/status", url.Values{"status": {"resolved"}})
	sent, ok := api.find(http.MethodPatch, "/api/consultations/c1")
	if !ok || strings.TrimSpace(sent.Body) != `{"status":"RESOLVED"}` {
		t.Fatalf("unexpected status request %+v", sent)
	}
}

func TestSectionsAreSafeOnZeroRecords(t *testing.T) {
	env := screen.Env{Images: images.NewAllowlist(nil), Now: time.Now()}
	lookups := &Lookups{}
	all := map[string]func() []detail.Section{
		"agencies":       func() []detail.Section { return agencyDefinition().Sections(Agency{}, env) },
		"banners":        func() []detail.Section { return bannerDefinition().Sections(Banner{}, env) },
		"blogs":          func() []detail.Section { return blogDefinition().Sections(Blog{}, env) },
		"certifications": func() []detail.Section { return certificationDefinition().Sections(Certification{}, env) },
		"committees":     func() []detail.Section { return committeeDefinition().Sections(Committee{}, env) },
		"consultations":  func() []detail.Section { return consultationDefinition().Sections(Consultation{}, env) },
		"events":         func() []detail.Section { return eventDefinition().Sections(Event{}, env) },
		"gallery":        func() []detail.Section { return galleryDefinition().Sections(GalleryItem{}, env) },
		"jobs":           func() []detail.Section { return jobDefinition().Sections(Job{}, env) },
		"members":        func() []detail.Section { return memberDefinition(lookups).Sections(Member{}, env) },
		"news":           func() []detail.Section { return newsDefinition().Sections(News{}, env) },
		"payments":       func() []detail.Section { return paymentDefinition().Sections(Payment{}, env) },
		"scholarships":   func() []detail.Section { return scholarshipDefinition().Sections(Scholarship{}, env) },
		"users":          func() []detail.Section { return userDefinition().Sections(User{}, env) },
	}
	for name, sections := range all {
		skeleton := detail.Skeleton(sections())
		if len(skeleton) == 0 {
			t.Fatalf("%s: expected skeleton sections", name)
		}
	}
}

func TestBlogSlugDerivedFromTitle(t *testing.T) {
	def := blogDefinition()
	f := BlogForm{Title: "Studying in Japan: A Guide"}
	def.Prepare(&f)
	if f.Slug != "studying-in-japan-a-guide" {
		t.Fatalf("unexpected slug %q", f.Slug)
	}
}

func TestCollectionsCoverEveryModule(t *testing.T) {
	if got := len(Collections()); got != 15 {
		t.Fatalf("expected 14 collections plus session, got %d", got)
	}
}

func seedUsers(api *upstream, n int) {
	for i := 1; i <= n; i++ {
		id := "u" + strconv.Itoa(i)
		api.seed("users", map[string]any{"id": id, "name": "User " + strconv.Itoa(i), "email": id + "@example.com"})
	}
}

func TestLookupsReadEveryPage(t *testing.T) {
	api := newUpstream()
	seedUsers(api, 250)
	var lookups *Lookups
	newDashboardWith(t, api, func(d *screen.Deps) { lookups = NewLookups(*d) })

	opts, err := lookups.Options(t.Context(), SourceUsers)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts) != 250 {
		t.Fatalf("expected 250 user options, got %d", len(opts))
	}
}

func TestMemberAutofillsUserBeyondFirstPage(t *testing.T) {
	api := newUpstream()
	seedUsers(api, 150)
	h := newDashboard(t, api)

	if body := get(h, "/members/new").Body.String(); !strings.Contains(body, `value="u150"`) {
		t.Fatalf("expected the 150th user in the select")
	}
	rec := post(h, "/members/new", url.Values{"user_id": {"u150"}, "kind": {"GENERAL"}, "name": {""}, "email": {""}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	sent, _ := api.find(http.MethodPost, "/api/members")
	if !strings.Contains(sent.Body, `"name":"User 150"`) || !strings.Contains(sent.Body, `"email":"u150@example.com"`) {
		t.Fatalf("expected user 150 to be copied, got %s", sent.Body)
	}
}

func TestAgencyEditRefreshesEmbeddedAgencyOnJobs(t *testing.T) {
	api := newUpstream()
	api.seed("agencies", map[string]any{"id": "a1", "name": "Old Agency", "email": "info@agency.jp", "established_year": 2010})
	api.seed("jobs", map[string]any{"id": "j1", "title": "Japanese Teacher", "agency": map[string]any{"id": "a1", "name": "Old Agency"}})
	h := newDashboard(t, api)

	if body := get(h, "/jobs").Body.String(); !strings.Contains(body, "Old Agency") {
		t.Fatalf("expected the embedded agency name")
	}
	api.mu.Lock()
	api.data["jobs"][0]["agency"] = map[string]any{"id": "a1", "name": "New Agency"}
	api.mu.Unlock()
	if body := get(h, "/jobs").Body.String(); !strings.Contains(body, "Old Agency") {
		t.Fatalf("expected the cached job page before any mutation")
	}

	rec := post(h, "/agencies/a1/edit", url.Values{"name": {"New Agency"}, "email": {"info@agency.jp"}, "established_year": {"2010"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := get(h, "/jobs").Body.String(); !strings.Contains(body, "New Agency") {
		t.Fatalf("an agency change must drop cached job pages")
	}
}
