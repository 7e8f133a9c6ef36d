package apiclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"bssaj-admin/internal/cache"
	"bssaj-admin/internal/metrics"
)

// Cached puts a query cache in front of a Collection. Keys embed a per-collection
// generation; every successful mutation bumps it, and the generations of the
// dependent collections that embed its records, so stale pages are never served.
type Cached[T any] struct {
	*Collection[T]
	store      cache.Cache
	ttl        time.Duration
	log        *slog.Logger
	metrics    *metrics.Collector
	now        func() time.Time
	dependents []string
}

func NewCached[T any](col *Collection[T], store cache.Cache, ttl time.Duration, log *slog.Logger, m *metrics.Collector) *Cached[T] {
	return &Cached[T]{
		Collection: col,
		store:      store,
		ttl:        ttl,
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
}

// Cascade names collections whose records embed this one's, such as the
// agency shown on every job. They are invalidated along with it.
func (c *Cached[T]) Cascade(collections ...string) *Cached[T] {
	c.dependents = append(c.dependents, collections...)
	return c
}

func generationKey(collection string) string {
	return "gen:" + collection
}

func (c *Cached[T]) generation(ctx context.Context) string {
	raw, ok, err := c.store.Get(ctx, generationKey(c.name))
	if err != nil {
		c.log.Warn("cache generation read failed", slog.String("collection", c.name), slog.String("error", err.Error()))
		return ""
	}
	if !ok {
		return "0"
	}
	return string(raw)
}

// Invalidate drops every cached page and item of the collection and of its
// dependents.
func (c *Cached[T]) Invalidate(ctx context.Context) {
	gen := []byte(strconv.FormatInt(c.now().UnixNano(), 36))
	for _, name := range append([]string{c.name}, c.dependents...) {
		if err := c.store.Set(ctx, generationKey(name), gen, 0); err != nil {
			c.log.Warn("cache invalidate failed", slog.String("collection", name), slog.String("error", err.Error()))
		}
	}
}

func (c *Cached[T]) List(ctx context.Context, query url.Values) (Page[T], error) {
	gen := c.generation(ctx)
	if gen == "" || c.ttl <= 0 {
		return c.Collection.List(ctx, query)
	}
	key := "list:" + c.name + ":" + gen + ":" + query.Encode()

	var page Page[T]
	if c.lookup(ctx, key, &page) {
		return page, nil
	}
	page, err := c.Collection.List(ctx, query)
	if err != nil {
		return page, err
	}
	c.save(ctx, key, page)
	return page, nil
}

func (c *Cached[T]) Get(ctx context.Context, id string) (T, error) {
	gen := c.generation(ctx)
	if gen == "" || c.ttl <= 0 {
		return c.Collection.Get(ctx, id)
	}
	key := "item:" + c.name + ":" + gen + ":" + id

	var item T
	if c.lookup(ctx, key, &item) {
		return item, nil
	}
	item, err := c.Collection.Get(ctx, id)
	if err != nil {
		return item, err
	}
	c.save(ctx, key, item)
	return item, nil
}

func (c *Cached[T]) Create(ctx context.Context, body Body) (T, error) {
	out, err := c.Collection.Create(ctx, body)
	if err == nil {
		c.Invalidate(ctx)
	}
	return out, err
}

func (c *Cached[T]) Update(ctx context.Context, id string, body Body) (T, error) {
	out, err := c.Collection.Update(ctx, id, body)
	if err == nil {
		c.Invalidate(ctx)
	}
	return out, err
}

func (c *Cached[T]) Patch(ctx context.Context, id string, payload any) (T, error) {
	out, err := c.Collection.Patch(ctx, id, payload)
	if err == nil {
		c.Invalidate(ctx)
	}
	return out, err
}

func (c *Cached[T]) Delete(ctx context.Context, id string) error {
	err := c.Collection.Delete(ctx, id)
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}

func (c *Cached[T]) Action(ctx context.Context, path string, payload any) error {
	err := c.Collection.Action(ctx, path, payload)
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}

func (c *Cached[T]) lookup(ctx context.Context, key string, out any) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if ok && json.Unmarshal(raw, out) == nil {
		c.metrics.RecordCacheLookup(c.name, true)
		return true
	}
	c.metrics.RecordCacheLookup(c.name, false)
	return false
}

func (c *Cached[T]) save(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
