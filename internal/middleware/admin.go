package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"bssaj-admin/internal/auth"
	"bssaj-admin/internal/httpx"
)

// SessionCookie holds the signed session token of a logged in admin.
const SessionCookie = "bssaj_session"

type actorKey struct{}

// AdminAuth admits requests carrying a valid admin session. Page requests
// without one are sent to the login page; everything else gets a 401.
func AdminAuth(manager *auth.Manager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				httpx.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			cookie, err := r.Cookie(SessionCookie)
			if err == nil && cookie.Value != "" {
				claims, err := manager.Parse(cookie.Value)
				if err == nil && claims.Role == auth.RoleAdmin {
					ctx := context.WithValue(r.Context(), actorKey{}, claims.Subject)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if wantsPage(r) {
				target := loginPath + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}

// ActorFromContext is the username of the admin behind the request.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

// WithActor attaches the acting admin to ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func wantsPage(r *http.Request) bool {
	if r.Method != http.MethodGet || strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return false
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}
