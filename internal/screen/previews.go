package screen

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"bssaj-admin/internal/form"
	"bssaj-admin/internal/images"

	"github.com/go-chi/chi/v5"
)

// Previews serves the files a user selected but has not submitted yet.
type Previews struct {
	Store *form.PreviewStore
	Log   *slog.Logger
}

func (p *Previews) Mount(r chi.Router) {
	r.Get(images.PreviewPrefix+"{id}", p.Serve)
}

func (p *Previews) Serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	upload, ok, err := p.Store.Open(r.Context(), id)
	if err != nil {
		p.Log.Error("previews open: store error", slog.String("id", id), slog.String("error", err.Error()))
		http.Error(w, "preview unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	// Only accepted image types keep their own content type.
	ct := upload.ContentType
	if !form.IsImageType(ct) {
		p.Log.Warn("previews open: not an image", slog.String("id", id), slog.String("content_type", ct))
		ct = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("inline", map[string]string{"filename": upload.Filename})
	if disposition == "" {
		disposition = "inline"
	}
	h := w.Header()
	h.Set("Content-Type", ct)
	h.Set("Content-Length", strconv.Itoa(len(upload.Data)))
	h.Set("Content-Disposition", disposition)
	h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; sandbox")
	h.Set("Cache-Control", "private, max-age=300")
	h.Set("X-Content-Type-Options", "nosniff")
	w.Write(upload.Data)
}
