package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/httpx"
	"bssaj-admin/internal/listview"
	"bssaj-admin/internal/view"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
)

type fieldView struct {
	form.Field
	Value    string
	Error    string
	Options  []form.Option
	Previews []form.Preview
	// Selected counts the previews holding files selected in this draft.
	Selected int
}

type formPage struct {
	Collection string
	Singular   string
	Creating   bool
	Action     string
	DraftField string
	DraftID    string
	Fields     []fieldView
	Message    string
	CancelURL  string
	Return     string
	Multipart  bool
	Validate   string
	Mode       string
}

func (s *Screen[T, F]) NewForm(w http.ResponseWriter, r *http.Request) {
	draft := form.NewDraft(form.Fields(s.def.Fields, true))
	q := s.queryFromReturn(r.URL.Query().Get(ReturnField))
	s.renderForm(w, r, http.StatusOK, formState{draft: draft, creating: true, query: q})
}

func (s *Screen[T, F]) EditForm(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	q := s.queryFromReturn(r.URL.Query().Get(ReturnField))

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	item, err := s.col.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			log.Warn(s.def.Collection+" edit: not found", slog.String("id", id))
			s.renderMessage(w, r, http.StatusNotFound, s.def.Singular+" not found",
				apiclient.MessageOr(err, "This "+s.lower(s.def.Singular)+" does not exist or was deleted."))
			return
		}
		log.Error(s.def.Collection+" edit: api error", slog.String("id", id), slog.String("error", err.Error()))
		s.renderMessage(w, r, http.StatusBadGateway, "Something went wrong",
			apiclient.MessageOr(err, "Failed to load "+s.lower(s.def.Singular)))
		return
	}

	draft := form.NewDraft(form.Fields(s.def.Fields, false))
	values, err := s.deps.Encoder.Input(s.def.ToForm(item))
	if err != nil {
		log.Error(s.def.Collection+" edit: encode error", slog.String("id", id), slog.String("error", err.Error()))
	}
	draft.Reinitialize(values)
	s.remotePreviews(draft, item)
	s.renderForm(w, r, http.StatusOK, formState{draft: draft, id: id, query: q})
}

func (s *Screen[T, F]) Create(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, "")
}

func (s *Screen[T, F]) Update(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, strings.TrimSpace(chi.URLParam(r, "id")))
}

type formState struct {
	draft    *form.Draft
	creating bool
	id       string
	query    listview.Query
	message  string
}

func (s *Screen[T, F]) submit(w http.ResponseWriter, r *http.Request, id string) {
	log := s.logWithRequest(r)
	creating := id == ""
	action := "update"
	if creating {
		action = "create"
	}
	singular := s.lower(s.def.Singular)

	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn(s.def.Collection+" "+action+": request too large", slog.Int64("limit", tooLarge.Limit))
			s.renderMessage(w, r, http.StatusRequestEntityTooLarge, "Upload too large",
				"The form and its files must be under "+humanize.IBytes(uint64(tooLarge.Limit))+". Select fewer or smaller images.")
			return
		}
		log.Warn(s.def.Collection+" "+action+": invalid form", slog.String("error", err.Error()))
		s.renderMessage(w, r, http.StatusBadRequest, "Invalid form", "The submitted form could not be read.")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	fields := form.Fields(s.def.Fields, creating)
	draft := form.ResumeDraft(r.PostFormValue(form.DraftField), fields)
	draft.Apply(r.PostForm)
	st := formState{draft: draft, creating: creating, id: id, query: s.returnQuery(r)}

	if !s.inflight.begin(draft.ID) {
		log.Warn(s.def.Collection+" "+action+": submission already in progress", slog.String("draft", draft.ID))
		st.message = "This form is already being submitted. Please wait."
		s.renderForm(w, r, http.StatusConflict, st)
		return
	}
	defer s.inflight.end(draft.ID)

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	stashed, err := s.stashUploads(ctx, r, draft)
	if err != nil {
		log.Error(s.def.Collection+" "+action+": preview store error", slog.String("error", err.Error()))
		st.message = "Could not keep the selected files. Please select them again."
		s.renderForm(w, r, http.StatusInternalServerError, s.withPreviews(ctx, st))
		return
	}

	f, errs := s.check(ctx, log, draft)
	errs = form.Merge(stashed.errs, errs)
	if len(errs) > 0 {
		draft.SetErrors(errs)
		log.Warn(s.def.Collection+" "+action+": validation error", slog.Int("fields", len(errs)))
		st.message = "Please fix the highlighted fields."
		s.renderForm(w, r, http.StatusUnprocessableEntity, s.withPreviews(ctx, st))
		return
	}

	body, err := s.body(ctx, draft, f, stashed.kept)
	var missing *form.MissingPreviewError
	if errors.As(err, &missing) {
		log.Warn(s.def.Collection+" "+action+": preview expired", slog.String("slot", missing.Slot))
		if err := s.deps.Previews.Clear(ctx, draft.ID, missing.Slot); err != nil {
			log.Warn(s.def.Collection+" "+action+": preview clear error", slog.String("error", err.Error()))
		}
		draft.SetErrors(map[string]string{missing.Slot: "The selected file expired. Please select it again."})
		st.message = "Please fix the highlighted fields."
		s.renderForm(w, r, http.StatusUnprocessableEntity, s.withPreviews(ctx, st))
		return
	}
	if err != nil {
		log.Error(s.def.Collection+" "+action+": encode error", slog.String("error", err.Error()))
		st.message = fmt.Sprintf("Failed to %s %s", action, singular)
		s.renderForm(w, r, http.StatusInternalServerError, s.withPreviews(ctx, st))
		return
	}

	var saved T
	if creating {
		saved, err = s.col.Create(ctx, body)
	} else {
		saved, err = s.col.Update(ctx, id, body)
	}
	if err != nil {
		st.message = apiclient.MessageOr(err, fmt.Sprintf("Failed to %s %s", action, singular))
		code := http.StatusBadGateway
		if apiclient.IsClientError(err) {
			code = http.StatusUnprocessableEntity
			log.Warn(s.def.Collection+" "+action+": rejected by api", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			log.Error(s.def.Collection+" "+action+": api error", slog.String("id", id), slog.String("error", err.Error()))
		}
		s.record(r, action, id, err, st.message)
		s.renderForm(w, r, code, s.withPreviews(ctx, st))
		return
	}

	if creating && s.def.ID != nil {
		id = s.def.ID(saved)
	}
	if err := s.deps.Previews.Release(ctx, draft.ID, form.FileSlots(fields)...); err != nil {
		log.Warn(s.def.Collection+" "+action+": preview release error", slog.String("error", err.Error()))
	}
	done := "updated"
	if creating {
		done = "created"
	}
	msg := s.def.Singular + " " + done
	log.Info(s.def.Collection+" "+action+": ok", slog.String("id", id))
	s.record(r, action, id, nil, msg)
	SetFlash(w, view.Success(msg), s.deps.CookieSecure)
	s.redirect(w, r, s.listURL(st.query))
}

// check binds the draft values into a form and validates it, returning the
// field errors.
func (s *Screen[T, F]) check(ctx context.Context, log *slog.Logger, draft *form.Draft) (F, map[string]string) {
	var f F
	errs := s.deps.Binder.Decode(draft.Values(), &f)
	if s.def.Prepare != nil {
		s.def.Prepare(&f)
	}
	if s.def.Autofill != nil {
		if err := s.def.Autofill(ctx, &f); err != nil {
			log.Warn(s.def.Collection+" form: autofill error", slog.String("error", err.Error()))
		}
	}
	return f, form.Merge(errs, s.deps.Binder.Validate(&f))
}

type fieldResult struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidateField checks the posted form when one field loses focus and
// reports that field's error only. The other fields stay untouched.
func (s *Screen[T, F]) ValidateField(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxRequestBytes)
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid form", nil)
		return
	}
	name := r.PostFormValue(validateField)
	fields := form.Fields(s.def.Fields, r.PostFormValue(validateMode) != "edit")
	if !slices.ContainsFunc(fields, func(f form.Field) bool { return f.Name == name && !f.IsFile() }) {
		httpx.WriteError(w, http.StatusBadRequest, "unknown field", map[string]string{validateField: name})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	draft := form.ResumeDraft(r.PostFormValue(form.DraftField), fields)
	draft.Load(r.PostForm)
	draft.Touch(name)
	_, errs := s.check(ctx, s.logWithRequest(r), draft)
	draft.SetErrors(errs)
	httpx.WriteJSON(w, http.StatusOK, fieldResult{Field: name, Error: draft.Error(name)})
}

// Hidden inputs posted by the blur validation script.
const (
	validateField = "_field"
	validateMode  = "_mode"
)

// selectedField carries how many local files a slot showed when the form
// was rendered.
func selectedField(slot string) string { return "_selected_" + slot }

type stashResult struct {
	errs map[string]string
	// kept is the number of earlier files each untouched slot must still hold.
	kept map[string]int
}

// stashUploads moves newly selected files into the preview store. Selecting
// files for a slot replaces whatever the slot held; a clear_<slot> flag empties it.
// A file that is too large or not an image leaves the slot as it was and is
// reported as a field error.
func (s *Screen[T, F]) stashUploads(ctx context.Context, r *http.Request, draft *form.Draft) (stashResult, error) {
	res := stashResult{errs: map[string]string{}, kept: map[string]int{}}
	for _, slot := range form.FileSlots(draft.Fields()) {
		if r.PostFormValue("clear_"+slot) == "true" {
			if err := s.deps.Previews.Clear(ctx, draft.ID, slot); err != nil {
				return res, err
			}
			continue
		}
		if n, err := strconv.Atoi(r.PostFormValue(selectedField(slot))); err == nil && n > 0 {
			res.kept[slot] = n
		}
		if r.MultipartForm == nil {
			continue
		}
		var uploads []form.Upload
		for _, fh := range r.MultipartForm.File[slot] {
			if fh.Filename == "" || fh.Size == 0 {
				continue
			}
			u, err := form.ReadUpload(fh, s.deps.MaxFileBytes)
			switch {
			case errors.Is(err, form.ErrFileTooLarge):
				res.errs[slot] = "Each file must be " + humanize.IBytes(uint64(s.deps.MaxFileBytes)) + " or smaller"
				continue
			case errors.Is(err, form.ErrNotImage):
				res.errs[slot] = "Only PNG, JPEG, GIF or WebP images are allowed"
				continue
			case err != nil:
				return res, err
			}
			uploads = append(uploads, u)
		}
		if len(uploads) == 0 || res.errs[slot] != "" {
			continue
		}
		if _, err := s.deps.Previews.Put(ctx, draft.ID, slot, uploads...); err != nil {
			return res, err
		}
		delete(res.kept, slot)
	}
	return res, nil
}

// body builds the API payload. A slot holding fewer files than kept lost
// some to expiry or eviction and fails with *form.MissingPreviewError.
func (s *Screen[T, F]) body(ctx context.Context, draft *form.Draft, f F, kept map[string]int) (apiclient.Body, error) {
	if s.def.Body == form.BodyJSON {
		return form.BuildBody(form.BodyJSON, f, nil, nil), nil
	}
	values, err := s.deps.Encoder.Payload(f)
	if err != nil {
		return nil, err
	}
	var files []apiclient.File
	for _, slot := range form.FileSlots(draft.Fields()) {
		uploads, err := s.deps.Previews.Files(ctx, draft.ID, slot)
		if err != nil {
			return nil, err
		}
		if len(uploads) < kept[slot] {
			return nil, &form.MissingPreviewError{Slot: slot}
		}
		for _, u := range uploads {
			files = append(files, u.File(slot))
		}
	}
	return form.BuildBody(form.BodyMultipart, nil, values, files), nil
}

// withPreviews attaches the live previews of every slot before a re-render.
// Slots with no local files fall back to the images already stored upstream.
func (s *Screen[T, F]) withPreviews(ctx context.Context, st formState) formState {
	for _, slot := range form.FileSlots(st.draft.Fields()) {
		local, err := s.deps.Previews.Previews(ctx, st.draft.ID, slot)
		if err != nil {
			s.deps.Log.Warn(s.def.Collection+" form: preview read error", slog.String("error", err.Error()))
		}
		st.draft.Previews[slot] = local
	}
	if st.creating || s.def.RemoteImages == nil {
		return st
	}
	if item, err := s.col.Get(ctx, st.id); err == nil {
		s.remotePreviews(st.draft, item)
	}
	return st
}

func (s *Screen[T, F]) remotePreviews(draft *form.Draft, item T) {
	if s.def.RemoteImages == nil {
		return
	}
	for slot, urls := range s.def.RemoteImages(item) {
		if len(draft.Previews[slot]) > 0 {
			continue
		}
		var previews []form.Preview
		for _, u := range urls {
			if strings.TrimSpace(u) != "" {
				previews = append(previews, s.deps.Previews.Remote(u))
			}
		}
		draft.Previews[slot] = previews
	}
}

func (s *Screen[T, F]) renderForm(w http.ResponseWriter, r *http.Request, code int, st formState) {
	log := s.logWithRequest(r)
	draft := st.draft
	page := formPage{
		Collection: s.def.Collection,
		Singular:   s.def.Singular,
		Creating:   st.creating,
		DraftField: form.DraftField,
		DraftID:    draft.ID,
		Message:    st.message,
		CancelURL:  s.listURL(st.query),
		Return:     st.query.Encode(),
		Multipart:  s.def.Body == form.BodyMultipart,
		Validate:   s.base() + "/validate",
		Mode:       "new",
	}
	if st.creating {
		page.Action = s.base() + "/new"
	} else {
		page.Mode = "edit"
		page.Action = s.base() + "/" + url.PathEscape(st.id) + "/edit"
	}

	for _, f := range draft.Fields() {
		fv := fieldView{Field: f, Value: draft.Value(f.Name), Error: draft.Error(f.Name), Options: f.Options}
		if f.OptionsFrom != "" && s.deps.Lookups != nil {
			opts, err := s.deps.Lookups.Options(r.Context(), f.OptionsFrom)
			if err != nil {
				log.Warn(s.def.Collection+" form: lookup error", slog.String("source", f.OptionsFrom), slog.String("error", err.Error()))
			}
			fv.Options = opts
		}
		for _, p := range draft.Previews[f.Name] {
			if s.deps.Images.Allowed(p.URL) {
				fv.Previews = append(fv.Previews, p)
				if !p.Remote {
					fv.Selected++
				}
			}
		}
		page.Fields = append(page.Fields, fv)
	}

	title := "New " + s.lower(s.def.Singular)
	if !st.creating {
		title = "Edit " + s.lower(s.def.Singular)
	}
	layout := s.layout(w, r, title)
	if st.message != "" && code >= http.StatusBadRequest {
		layout.Toast = view.Failure(st.message)
	}
	if err := s.deps.Renderer.Render(w, code, "form", layout, page); err != nil {
		log.Error(s.def.Collection+" form: render error", slog.String("error", err.Error()))
	}
}

type messagePage struct {
	Title   string
	Message string
	BackURL string
}

func (s *Screen[T, F]) renderMessage(w http.ResponseWriter, r *http.Request, code int, title, message string) {
	data := messagePage{Title: title, Message: message, BackURL: s.base()}
	if err := s.deps.Renderer.Render(w, code, "message", s.layout(w, r, title), data); err != nil {
		s.logWithRequest(r).Error(s.def.Collection+" message: render error", slog.String("error", err.Error()))
	}
}

func (s *Screen[T, F]) queryFromReturn(raw string) listview.Query {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return listview.DefaultQuery()
	}
	return listview.ParseQuery(values, s.filterKeys())
}
