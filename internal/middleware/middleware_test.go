package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bssaj-admin/internal/auth"
	"bssaj-admin/internal/metrics"

	"github.com/go-chi/chi/v5"
)

func testManager() *auth.Manager {
	return &auth.Manager{Secret: []byte("test-secret"), AccessTTL: time.Hour, Issuer: "bssaj-admin"}
}

func TestAdminAuthRedirectsPagesToLogin(t *testing.T) {
	h := AdminAuth(testManager(), "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without a session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/jobs?page=2", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fjobs%3Fpage%3D2" {
		t.Fatalf("unexpected redirect %q", loc)
	}

	post := httptest.NewRequest(http.MethodPost, "/jobs/j1/delete", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, post)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for POST, got %d", rec.Code)
	}
}

func TestAdminAuthPutsActorInContext(t *testing.T) {
	m := testManager()
	token, err := m.NewSessionToken("rahim", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	var actor string
	h := AdminAuth(m, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if actor != "rahim" {
		t.Fatalf("expected actor rahim, got %q", actor)
	}
}

func TestSameOrigin(t *testing.T) {
	h := SameOrigin("https://admin.bssaj.org")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	cases := []struct {
		name   string
		method string
		header string
		value  string
		want   int
	}{
		{"get from anywhere", http.MethodGet, "Origin", "https://evil.example", http.StatusNoContent},
		{"same origin post", http.MethodPost, "Origin", "https://admin.bssaj.org", http.StatusNoContent},
		{"cross origin post", http.MethodPost, "Origin", "https://evil.example", http.StatusForbidden},
		{"cross referer post", http.MethodPost, "Referer", "https://evil.example/form", http.StatusForbidden},
		{"same referer post", http.MethodPost, "Referer", "https://admin.bssaj.org/jobs", http.StatusNoContent},
		{"no headers", http.MethodPost, "", "", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "http://admin.bssaj.org/jobs/new", nil)
		if tc.header != "" {
			req.Header.Set(tc.header, tc.value)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("k") || !rl.Allow("k") {
		t.Fatalf("expected first two attempts to pass")
	}
	if rl.Allow("k") {
		t.Fatalf("expected third attempt to be limited")
	}
	now = now.Add(61 * time.Second)
	if !rl.Allow("k") {
		t.Fatalf("expected a new window to pass")
	}
}

func TestRateLimiterOnlyLimitsPosts(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET must not be limited, got %d", rec.Code)
		}
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected 429 with Retry-After, got %d %q", rec.Code, rec.Header().Get("Retry-After"))
	}
}

func TestRequestIDKeepsValidInbound(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected inbound id to be kept, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id <script>")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "bad id <script>" || len(seen) != 36 {
		t.Fatalf("expected a generated id, got %q", seen)
	}
}

func TestLoggerRecordsRoutePattern(t *testing.T) {
	m := metrics.New("bssaj")
	r := chi.NewRouter()
	r.Use(Logger(slog.New(slog.NewTextHandler(io.Discard, nil)), m))
	r.Get("/jobs/{id}/edit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/j1/edit", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/j2/edit", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `bssaj_http_requests_total{method="GET",route="/jobs/{id}/edit",status_code="202"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected %q in metrics", want)
	}
}
