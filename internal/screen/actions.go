package screen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/dialog"
	"bssaj-admin/internal/status"
	"bssaj-admin/internal/view"

	"github.com/go-chi/chi/v5"
)

// Delete runs the confirmed delete exactly once and returns to the list
// with the dialog closed, whatever the outcome.
func (s *Screen[T, F]) Delete(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	q := s.returnQuery(r)
	singular := s.lower(s.def.Singular)

	confirm := &dialog.Confirm{
		Open:    true,
		Title:   "Delete " + singular,
		Success: s.def.Singular + " deleted",
		Failure: "Failed to delete " + singular,
	}
	out := confirm.Run(r.Context(), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, submitTimeout)
		defer cancel()
		return s.col.Delete(ctx, id)
	})
	s.finish(w, r, log, "delete", id, out)
	s.redirect(w, r, s.listURL(q))
}

func (s *Screen[T, F]) Approve(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, true)
}

// Reject is only reachable from the reject confirmation dialog.
func (s *Screen[T, F]) Reject(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, false)
}

func (s *Screen[T, F]) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	q := s.returnQuery(r)
	singular := s.lower(s.def.Singular)

	action, done := "reject", "rejected"
	if approve {
		action, done = "approve", "approved"
	}
	payload := any(status.ApprovalPatch(approve))
	if s.def.ApprovalPayload != nil {
		payload = s.def.ApprovalPayload(approve)
	}

	confirm := &dialog.Confirm{
		Open:    true,
		Success: s.def.Singular + " " + done,
		Failure: fmt.Sprintf("Failed to %s %s", action, singular),
	}
	out := confirm.Run(r.Context(), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, submitTimeout)
		defer cancel()
		_, err := s.col.Patch(ctx, id, payload)
		return err
	})
	s.finish(w, r, log, action, id, out)
	s.redirect(w, r, s.listURL(q))
}

func (s *Screen[T, F]) SetStatus(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	q := s.returnQuery(r)
	t := s.def.Transitions
	to := strings.ToUpper(strings.TrimSpace(r.PostFormValue("status")))

	if !t.Set.Valid(to) {
		log.Warn(s.def.Collection+" status: invalid value", slog.String("status", to))
		SetFlash(w, view.Failure("Unknown status "+to), s.deps.CookieSecure)
		s.redirect(w, r, s.listURL(q))
		return
	}

	confirm := &dialog.Confirm{
		Open:    true,
		Success: fmt.Sprintf("%s marked %s", s.def.Singular, strings.ToLower(t.Set.Badge(to).Label)),
		Failure: "Failed to update " + s.lower(s.def.Singular) + " status",
	}
	out := confirm.Run(r.Context(), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, submitTimeout)
		defer cancel()
		_, err := s.col.Patch(ctx, id, map[string]string{t.Field: to})
		return err
	})
	s.finish(w, r, log, "status:"+strings.ToLower(to), id, out)
	s.redirect(w, r, s.listURL(q))
}

func (s *Screen[T, F]) CollectionAction(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	name := chi.URLParam(r, "action")
	q := s.returnQuery(r)

	var action *CollectionAction
	for i := range s.def.Actions {
		if s.def.Actions[i].Name == name {
			action = &s.def.Actions[i]
			break
		}
	}
	if action == nil {
		log.Warn(s.def.Collection+" action: unknown", slog.String("action", name))
		http.NotFound(w, r)
		return
	}

	confirm := &dialog.Confirm{Open: true, Success: action.Success, Failure: action.Failure}
	out := confirm.Run(r.Context(), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, submitTimeout)
		defer cancel()
		return s.col.Action(ctx, action.Path, nil)
	})
	s.finish(w, r, log, name, "", out)
	s.redirect(w, r, s.listURL(q))
}

// finish logs, audits and flashes the outcome of a mutation.
func (s *Screen[T, F]) finish(w http.ResponseWriter, r *http.Request, log *slog.Logger, action, id string, out dialog.Outcome) {
	if out.Err != nil {
		attrs := []any{slog.String("id", id), slog.String("error", out.Err.Error())}
		if apiclient.IsClientError(out.Err) {
			log.Warn(s.def.Collection+" "+action+": rejected by api", attrs...)
		} else {
			log.Error(s.def.Collection+" "+action+": api error", attrs...)
		}
	} else {
		log.Info(s.def.Collection+" "+action+": ok", slog.String("id", id))
	}
	s.record(r, action, id, out.Err, out.Toast.Message)
	SetFlash(w, out.Toast, s.deps.CookieSecure)
}
