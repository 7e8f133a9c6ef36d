package listview

import (
	"context"
	"sync"
	"time"

	"bssaj-admin/internal/apiclient"
)

type Fetcher[T any] func(ctx context.Context, q Query) (apiclient.Page[T], error)

type Result[T any] struct {
	Seq   uint64
	Query Query
	Page  apiclient.Page[T]
	Err   error
}

type ControllerOptions struct {
	Interval time.Duration
	Clock    Clock
	// OnLoading is called when a fetch for q starts.
	OnLoading func(q Query)
}

// Controller is the interactive state of one list session. Only the result of
// the most recent fetch is ever delivered; earlier fetches are cancelled.
type Controller[T any] struct {
	mu        sync.Mutex
	base      context.Context
	query     Query
	total     int
	fetch     Fetcher[T]
	search    *Debouncer[string]
	onLoading func(Query)
	results   chan Result[T]
	cancel    context.CancelFunc
	seq       uint64
	closed    bool
}

func NewController[T any](ctx context.Context, initial Query, fetch Fetcher[T], opts ControllerOptions) *Controller[T] {
	interval := opts.Interval
	if interval <= 0 {
		interval = DebounceInterval
	}
	c := &Controller[T]{
		base:      ctx,
		query:     initial,
		fetch:     fetch,
		onLoading: opts.OnLoading,
		results:   make(chan Result[T], 1),
	}
	c.search = NewDebouncer(interval, opts.Clock, c.commitSearch)
	return c
}

// Results yields fetch outcomes. The channel is closed by Close.
func (c *Controller[T]) Results() <-chan Result[T] {
	return c.results
}

func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.clone()
}

// TypeSearch records a keystroke; the search is committed after the debounce interval.
func (c *Controller[T]) TypeSearch(s string) {
	c.search.Push(s)
}

func (c *Controller[T]) commitSearch(s string) {
	c.mu.Lock()
	next := c.query.WithSearch(s)
	if next.Search == c.query.Search {
		c.mu.Unlock()
		return
	}
	c.query = next
	c.mu.Unlock()
	c.Refresh()
}

// SetPage reports false when the target page is out of range or current.
func (c *Controller[T]) SetPage(page int) bool {
	c.mu.Lock()
	next, ok := NewPagination(c.query, c.total).GoTo(c.query, page)
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.query = next
	c.mu.Unlock()
	c.Refresh()
	return true
}

func (c *Controller[T]) SetFilter(key, value string) {
	c.mu.Lock()
	c.query = c.query.WithFilter(key, value)
	c.mu.Unlock()
	c.Refresh()
}

// Refresh fetches the current query, superseding any fetch still in flight.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.seq++
	seq := c.seq
	q := c.query.clone()
	onLoading := c.onLoading
	c.mu.Unlock()

	if onLoading != nil {
		onLoading(q)
	}
	go c.run(ctx, seq, q)
}

func (c *Controller[T]) run(ctx context.Context, seq uint64, q Query) {
	page, err := c.fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		return
	}
	if err == nil {
		c.total = page.Meta.Total
	}
	// Sends happen only under the lock into a buffer of one, so dropping an
	// undelivered older result keeps the send from blocking.
	select {
	case <-c.results:
	default:
	}
	c.results <- Result[T]{Seq: seq, Query: q, Page: page, Err: err}
}

// Close stops debouncing and cancels any fetch; nothing is delivered afterwards.
func (c *Controller[T]) Close() {
	c.search.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	close(c.results)
}
