package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/cache"
	"bssaj-admin/internal/images"

	"github.com/google/uuid"
)

// Upload is one file selected in a form.
type Upload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func (u Upload) File(field string) apiclient.File {
	return apiclient.File{Field: field, Filename: u.Filename, ContentType: u.ContentType, Data: u.Data}
}

// ErrPreviewMissing reports a selected file whose blob expired or was evicted
// before the form was submitted.
var ErrPreviewMissing = errors.New("form: preview missing")

// MissingPreviewError names the slot that lost a file.
type MissingPreviewError struct {
	Slot string
}

func (e *MissingPreviewError) Error() string {
	return "form: preview missing from slot " + e.Slot
}

func (e *MissingPreviewError) Unwrap() error { return ErrPreviewMissing }

// Preview is what a form renders for a file slot. Remote previews point at
// images already stored by the API and are never revoked.
type Preview struct {
	ID       string
	URL      string
	Filename string
	Size     int
	Remote   bool
}

// PreviewStore keeps selected files as short-lived blobs so they can be shown
// before the form is submitted and survive a re-render after a failed submit.
// A slot holds at most one generation of previews: storing new files revokes
// the previous ones first.
type PreviewStore struct {
	store cache.Cache
	ttl   time.Duration
	newID func() string
}

func NewPreviewStore(store cache.Cache, ttl time.Duration) *PreviewStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PreviewStore{store: store, ttl: ttl, newID: uuid.NewString}
}

func blobKey(id string) string { return "preview:blob:" + id }

func slotKey(draftID, slot string) string { return "preview:slot:" + draftID + ":" + slot }

func (p *PreviewStore) Put(ctx context.Context, draftID, slot string, files ...Upload) ([]Preview, error) {
	if err := p.Clear(ctx, draftID, slot); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(files))
	out := make([]Preview, 0, len(files))
	for _, f := range files {
		raw, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("form: encode preview: %w", err)
		}
		id := p.newID()
		if err := p.store.Set(ctx, blobKey(id), raw, p.ttl); err != nil {
			return nil, fmt.Errorf("form: store preview: %w", err)
		}
		ids = append(ids, id)
		out = append(out, Preview{ID: id, URL: images.PreviewPrefix + id, Filename: f.Filename, Size: len(f.Data)})
	}

	index, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("form: encode preview slot: %w", err)
	}
	if err := p.store.Set(ctx, slotKey(draftID, slot), index, p.ttl); err != nil {
		return nil, fmt.Errorf("form: store preview slot: %w", err)
	}
	return out, nil
}

// Clear revokes every preview held by the slot.
func (p *PreviewStore) Clear(ctx context.Context, draftID, slot string) error {
	ids, err := p.slotIDs(ctx, draftID, slot)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := p.store.Delete(ctx, blobKey(id)); err != nil {
			return fmt.Errorf("form: revoke preview: %w", err)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if err := p.store.Delete(ctx, slotKey(draftID, slot)); err != nil {
		return fmt.Errorf("form: clear preview slot: %w", err)
	}
	return nil
}

// Release revokes every slot of a draft, used when the draft is discarded.
func (p *PreviewStore) Release(ctx context.Context, draftID string, slots ...string) error {
	for _, slot := range slots {
		if err := p.Clear(ctx, draftID, slot); err != nil {
			return err
		}
	}
	return nil
}

// Previews lists the live local previews of a slot.
func (p *PreviewStore) Previews(ctx context.Context, draftID, slot string) ([]Preview, error) {
	ids, err := p.slotIDs(ctx, draftID, slot)
	if err != nil {
		return nil, err
	}
	out := make([]Preview, 0, len(ids))
	for _, id := range ids {
		u, ok, err := p.Open(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Preview{ID: id, URL: images.PreviewPrefix + id, Filename: u.Filename, Size: len(u.Data)})
	}
	return out, nil
}

// Files returns the uploads held by a slot, in selection order. A slot that
// lists a blob the store no longer has fails with *MissingPreviewError, so a
// submit never goes out with files silently dropped.
func (p *PreviewStore) Files(ctx context.Context, draftID, slot string) ([]Upload, error) {
	ids, err := p.slotIDs(ctx, draftID, slot)
	if err != nil {
		return nil, err
	}
	out := make([]Upload, 0, len(ids))
	for _, id := range ids {
		u, ok, err := p.Open(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &MissingPreviewError{Slot: slot}
		}
		out = append(out, u)
	}
	return out, nil
}

func (p *PreviewStore) Open(ctx context.Context, id string) (Upload, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Upload{}, false, nil
	}
	raw, ok, err := p.store.Get(ctx, blobKey(id))
	if err != nil {
		return Upload{}, false, fmt.Errorf("form: open preview: %w", err)
	}
	if !ok {
		return Upload{}, false, nil
	}
	var u Upload
	if err := json.Unmarshal(raw, &u); err != nil {
		return Upload{}, false, fmt.Errorf("form: decode preview: %w", err)
	}
	return u, true, nil
}

// Remote wraps an image the API already stores.
func (p *PreviewStore) Remote(url string) Preview {
	return Preview{URL: url, Remote: true}
}

func (p *PreviewStore) slotIDs(ctx context.Context, draftID, slot string) ([]string, error) {
	raw, ok, err := p.store.Get(ctx, slotKey(draftID, slot))
	if err != nil {
		return nil, fmt.Errorf("form: read preview slot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("form: decode preview slot: %w", err)
	}
	return ids, nil
}
