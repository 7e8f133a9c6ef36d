package screen

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bssaj-admin/internal/audit"
	"bssaj-admin/internal/auth"
	"bssaj-admin/internal/middleware"
	"bssaj-admin/internal/view"

	"github.com/go-chi/chi/v5"
)

// Credentials of the single dashboard admin. PasswordHash (bcrypt) wins
// over the plain Password when both are set.
type Credentials struct {
	User         string
	Password     string
	PasswordHash string
}

type Session struct {
	Manager      *auth.Manager
	Credentials  Credentials
	Renderer     *Renderer
	Audit        audit.Recorder
	Limiter      *middleware.RateLimiter
	Log          *slog.Logger
	CookieSecure bool
}

type loginPage struct {
	User    string
	Next    string
	Message string
}

func (s *Session) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		if s.Limiter != nil {
			r.Use(s.Limiter.Middleware)
		}
		r.Get("/login", s.LoginForm)
		r.Post("/login", s.Login)
	})
	r.Post("/logout", s.Logout)
}

func (s *Session) LoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, loginPage{Next: safeNext(r.URL.Query().Get("next"))})
}

func (s *Session) Login(w http.ResponseWriter, r *http.Request) {
	log := s.Log
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	user := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))

	if !s.check(user, password) {
		log.Warn("session login: invalid credentials", slog.String("user", user))
		s.recordLogin(r, user, audit.OutcomeFailure, "invalid credentials")
		s.render(w, r, http.StatusUnauthorized, loginPage{User: user, Next: next, Message: "Invalid username or password"})
		return
	}

	token, err := s.Manager.NewSessionToken(user, auth.RoleAdmin)
	if err != nil {
		log.Error("session login: token error", slog.String("error", err.Error()))
		s.render(w, r, http.StatusInternalServerError, loginPage{User: user, Next: next, Message: "Could not start a session"})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.Manager.AccessTTL / time.Second),
	})
	log.Info("session login: ok", slog.String("user", user))
	s.recordLogin(r, user, audit.OutcomeSuccess, "signed in")
	SetFlash(w, view.Success("Welcome back, "+user), s.CookieSecure)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Session) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Session) check(user, password string) bool {
	c := s.Credentials
	if user == "" || password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.User)) == 1
	if c.PasswordHash != "" {
		return auth.ComparePassword(c.PasswordHash, password) == nil && userOK
	}
	if c.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1 && userOK
}

func (s *Session) recordLogin(r *http.Request, user string, outcome audit.Outcome, message string) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(r.Context(), audit.Entry{
		Resource:  "session",
		Action:    "login",
		Actor:     user,
		Outcome:   outcome,
		Message:   message,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
}

func (s *Session) render(w http.ResponseWriter, r *http.Request, code int, data loginPage) {
	layout := Layout{Title: "Sign in", Nav: []NavItem{}, Toast: TakeFlash(w, r, s.CookieSecure)}
	if err := s.Renderer.Render(w, code, "login", layout, data); err != nil {
		s.Log.Error("session login: render error", slog.String("error", err.Error()))
	}
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
