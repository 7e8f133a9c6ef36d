package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"bssaj-admin/internal/httpx"
)

// AllowedOrigin reports whether a request comes from the dashboard's own
// origin. Requests without an Origin header are not cross-site and pass.
func AllowedOrigin(publicOrigin string) func(r *http.Request) bool {
	want := normalizeOrigin(publicOrigin)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		got := normalizeOrigin(origin)
		return got == want || got == normalizeOrigin("http://"+r.Host) || got == normalizeOrigin("https://"+r.Host)
	}
}

// SameOrigin rejects state-changing requests sent from another site.
func SameOrigin(publicOrigin string) func(http.Handler) http.Handler {
	allowed := AllowedOrigin(publicOrigin)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !allowed(r) || !refererAllowed(r, allowed) {
				httpx.WriteError(w, http.StatusForbidden, "cross-site request rejected", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func refererAllowed(r *http.Request, allowed func(*http.Request) bool) bool {
	if r.Header.Get("Origin") != "" {
		return true
	}
	ref := r.Header.Get("Referer")
	if ref == "" {
		return true
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return false
	}
	same := r.Clone(r.Context())
	same.Header.Set("Origin", u.Scheme+"://"+u.Host)
	return allowed(same)
}

func normalizeOrigin(origin string) string {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
