package screen

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"bssaj-admin/internal/view"
)

const flashCookie = "bssaj_flash"

// SetFlash stores a one-shot toast shown by the next rendered page.
func SetFlash(w http.ResponseWriter, toast view.Toast, secure bool) {
	if toast.IsZero() {
		return
	}
	raw, err := json.Marshal(toast)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// TakeFlash reads and clears the pending toast.
func TakeFlash(w http.ResponseWriter, r *http.Request, secure bool) view.Toast {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return view.Toast{}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return view.Toast{}
	}
	var toast view.Toast
	if json.Unmarshal(raw, &toast) != nil {
		return view.Toast{}
	}
	if toast.Kind != view.ToastSuccess && toast.Kind != view.ToastError {
		return view.Toast{}
	}
	return toast
}
