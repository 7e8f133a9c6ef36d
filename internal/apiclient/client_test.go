package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bssaj-admin/internal/cache"

	"github.com/cenkalti/backoff/v4"
)

type banner struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL + "/api/v1/", Token: "secret", MaxRetries: 2})
	c.newBackoff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c, srv
}

func TestListDecodesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/banners" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("search") != "spring" {
			t.Errorf("expected search param, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		w.Write([]byte(`{"data":[{"id":"b1","title":"Spring Sale"}],"meta":{"total":41,"limit":20}}`))
	})

	page, err := NewCollection[banner](c, "banners").List(context.Background(), url.Values{"search": {"spring"}})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Title != "Spring Sale" {
		t.Fatalf("unexpected data: %+v", page.Data)
	}
	if page.Meta.Total != 41 || page.Meta.Limit != 20 {
		t.Fatalf("unexpected meta: %+v", page.Meta)
	}
}

func TestListEmptyDataIsNotNil(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"meta":{"total":0,"limit":20}}`))
	})
	page, err := NewCollection[banner](c, "banners").List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if page.Data == nil {
		t.Fatalf("expected empty slice")
	}
}

func TestGetNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Banner not found"}`))
			return
		}
		w.Write([]byte(`{"data":null}`))
	})
	col := NewCollection[banner](c, "banners")

	_, err := col.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if MessageOr(err, "fallback") != "Banner not found" {
		t.Fatalf("expected server message, got %q", MessageOr(err, "fallback"))
	}

	_, err = col.Get(context.Background(), "empty")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty data, got %v", err)
	}
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"id":"b1","title":"ok"}}`))
	})
	item, err := NewCollection[banner](c, "banners").Get(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if item.ID != "b1" || atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected success on third attempt, hits=%d", hits)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"data":{"message":"bad filter"}}`))
	})
	_, err := NewCollection[banner](c, "banners").List(context.Background(), nil)
	if !IsClientError(err) {
		t.Fatalf("expected client error, got %v", err)
	}
	if MessageOr(err, "x") != "bad filter" {
		t.Fatalf("expected nested data.message, got %q", MessageOr(err, "x"))
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single attempt, got %d", hits)
	}
}

func TestMutationsAreNotRetried(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := NewCollection[banner](c, "banners").Delete(context.Background(), "b1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if MessageOr(err, "Failed to delete banner") != "Failed to delete banner" {
		t.Fatalf("expected fallback message")
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected one attempt, got %d", hits)
	}
}

func TestCreateMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if r.FormValue("title") != "Spring Sale" || r.FormValue("link") != "https://example.com" {
			t.Errorf("unexpected fields: %v", r.MultipartForm.Value)
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image: %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		if hdr.Filename != "sale.png" || string(data) != "png-bytes" {
			t.Errorf("unexpected file %s %q", hdr.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"b9","title":"Spring Sale"}}`))
	})

	body := NewMultipartBody(
		url.Values{"title": {"Spring Sale"}, "link": {"https://example.com"}},
		[]File{{Field: "image", Filename: "sale.png", ContentType: "image/png", Data: []byte("png-bytes")}},
	)
	created, err := NewCollection[banner](c, "banners").Create(context.Background(), body)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.ID != "b9" {
		t.Fatalf("unexpected created: %+v", created)
	}
}

func TestPatchSendsJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/v1/jobs/j1" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["is_approved"] != false {
			t.Errorf("expected is_approved=false, got %v", payload)
		}
		w.Write([]byte(`{"data":{"id":"j1","title":"Engineer"}}`))
	})
	_, err := NewCollection[banner](c, "jobs").Patch(context.Background(), "j1", map[string]bool{"is_approved": false})
	if err != nil {
		t.Fatalf("Patch error: %v", err)
	}
}

func TestConcurrentIdenticalGetsShareOneCall(t *testing.T) {
	var hits int32
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		w.Write([]byte(`{"data":{"id":"b1"}}`))
	})
	col := NewCollection[banner](c, "banners")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); col.Get(context.Background(), "b1") }()
	<-entered
	go func() { defer wg.Done(); col.Get(context.Background(), "b1") }()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func TestCachedInvalidatesOnMutation(t *testing.T) {
	var lists int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			atomic.AddInt32(&lists, 1)
			w.Write([]byte(`{"data":[],"meta":{"total":0,"limit":20}}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	store := cache.NewMemory(64, time.Hour)
	cached := NewCached(NewCollection[banner](c, "banners"), store, time.Minute, c.log, nil)
	ctx := context.Background()
	q := url.Values{"page": {"1"}}

	cached.List(ctx, q)
	cached.List(ctx, q)
	if got := atomic.LoadInt32(&lists); got != 1 {
		t.Fatalf("expected cached second list, upstream hits=%d", got)
	}

	if err := cached.Delete(ctx, "b1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	cached.List(ctx, q)
	if got := atomic.LoadInt32(&lists); got != 2 {
		t.Fatalf("expected fresh fetch after delete, upstream hits=%d", got)
	}
}

func TestCachedCascadesToDependents(t *testing.T) {
	var jobLists int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/jobs"):
			atomic.AddInt32(&jobLists, 1)
			w.Write([]byte(`{"data":[],"meta":{"total":0,"limit":20}}`))
		case r.Method == http.MethodPatch:
			w.Write([]byte(`{"data":{"id":"a1"}}`))
		}
	})
	store := cache.NewMemory(64, time.Hour)
	agencies := NewCached(NewCollection[banner](c, "agencies"), store, time.Minute, c.log, nil).Cascade("jobs")
	jobs := NewCached(NewCollection[banner](c, "jobs"), store, time.Minute, c.log, nil)
	ctx := context.Background()
	q := url.Values{"page": {"1"}}

	jobs.List(ctx, q)
	jobs.List(ctx, q)
	if got := atomic.LoadInt32(&jobLists); got != 1 {
		t.Fatalf("expected cached job list, upstream hits=%d", got)
	}
	if _, err := agencies.Patch(ctx, "a1", map[string]string{"name": "Renamed"}); err != nil {
		t.Fatalf("Patch error: %v", err)
	}
	jobs.List(ctx, q)
	if got := atomic.LoadInt32(&jobLists); got != 2 {
		t.Fatalf("agency change must drop cached jobs, upstream hits=%d", got)
	}
}
