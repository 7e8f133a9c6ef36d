package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"bssaj-admin/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisPreviews(t *testing.T) (*PreviewStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPreviewStore(cache.NewRedisWithClient(client, "test:"), time.Minute), mr
}

func TestReplacingFileRevokesPrevious(t *testing.T) {
	ctx := context.Background()
	p, _ := newRedisPreviews(t)
	draft := NewDraft(nil).ID

	a, err := p.Put(ctx, draft, "logo", Upload{Filename: "a.png", Data: []byte("A")})
	if err != nil || len(a) != 1 {
		t.Fatalf("Put A: %v %v", a, err)
	}
	b, err := p.Put(ctx, draft, "logo", Upload{Filename: "b.png", Data: []byte("B")})
	if err != nil || len(b) != 1 {
		t.Fatalf("Put B: %v %v", b, err)
	}

	if _, ok, _ := p.Open(ctx, a[0].ID); ok {
		t.Fatalf("preview A must be revoked once B exists")
	}
	got, ok, err := p.Open(ctx, b[0].ID)
	if err != nil || !ok || string(got.Data) != "B" {
		t.Fatalf("expected live preview B, got %v %v", ok, err)
	}
	live, _ := p.Previews(ctx, draft, "logo")
	if len(live) != 1 || live[0].ID != b[0].ID {
		t.Fatalf("expected exactly one live preview, got %v", live)
	}
}

func TestReleaseRevokesEverySlot(t *testing.T) {
	ctx := context.Background()
	p, mr := newRedisPreviews(t)
	draft := NewDraft(nil).ID

	p.Put(ctx, draft, "logo", Upload{Filename: "logo.png", Data: []byte("L")})
	p.Put(ctx, draft, "success_stories",
		Upload{Filename: "one.jpg", Data: []byte("1")},
		Upload{Filename: "two.jpg", Data: []byte("2")},
	)
	files, _ := p.Files(ctx, draft, "success_stories")
	if len(files) != 2 || files[1].Filename != "two.jpg" {
		t.Fatalf("unexpected files %v", files)
	}

	if err := p.Release(ctx, draft, "logo", "success_stories"); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no preview keys left, got %v", keys)
	}
}

func TestRemotePreviewIsNeverRevoked(t *testing.T) {
	ctx := context.Background()
	p := NewPreviewStore(cache.NewMemory(16, time.Minute), time.Minute)
	draft := NewDraft(nil).ID

	remote := p.Remote("https://res.cloudinary.com/demo/logo.png")
	if !remote.Remote || remote.ID != "" {
		t.Fatalf("unexpected remote preview %+v", remote)
	}
	if err := p.Clear(ctx, draft, "logo"); err != nil {
		t.Fatalf("clearing an empty slot must succeed: %v", err)
	}
	if _, ok, _ := p.Open(ctx, "not-a-uuid"); ok {
		t.Fatalf("malformed ids must not resolve")
	}
}

func TestPreviewsExpire(t *testing.T) {
	ctx := context.Background()
	p, mr := newRedisPreviews(t)
	draft := NewDraft(nil).ID
	out, _ := p.Put(ctx, draft, "image", Upload{Filename: "x.png", Data: []byte("x")})
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := p.Open(ctx, out[0].ID); ok {
		t.Fatalf("preview must expire after the TTL")
	}
}

func TestFilesReportsEvictedBlob(t *testing.T) {
	ctx := context.Background()
	p, mr := newRedisPreviews(t)
	draft := NewDraft(nil).ID

	out, err := p.Put(ctx, draft, "success_stories",
		Upload{Filename: "one.jpg", Data: []byte("1")},
		Upload{Filename: "two.jpg", Data: []byte("2")},
	)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	mr.Del("test:" + blobKey(out[1].ID))

	_, err = p.Files(ctx, draft, "success_stories")
	var missing *MissingPreviewError
	if !errors.As(err, &missing) || missing.Slot != "success_stories" {
		t.Fatalf("expected MissingPreviewError for the slot, got %v", err)
	}
	if !errors.Is(err, ErrPreviewMissing) {
		t.Fatalf("expected ErrPreviewMissing, got %v", err)
	}
}
