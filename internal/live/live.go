// Package live serves the list screens' websocket channel: debounced search,
// paging and filtering re-render the rows in place, and the detail modal is
// streamed as a skeleton followed by the loaded record.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/httpx"
	"bssaj-admin/internal/listview"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// Client message types.
const (
	TypeSearch = "search"
	TypePage   = "page"
	TypeFilter = "filter"
	TypeView   = "view"
	TypeClose  = "close"
)

// Server reply types.
const (
	TypeLoading  = "loading"
	TypeResult   = "result"
	TypeError    = "error"
	TypeSkeleton = "skeleton"
	TypeDetail   = "detail"
)

type Message struct {
	Type  string          `json:"type"`
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

type Reply struct {
	Type    string `json:"type"`
	Query   string `json:"query,omitempty"`
	ID      string `json:"id,omitempty"`
	HTML    string `json:"html,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler runs one listview.Controller per connection.
type Handler[T any] struct {
	Upgrader   websocket.Upgrader
	FilterKeys []string
	Fetch      listview.Fetcher[T]
	// Rows renders the rows, pager and empty state of a successful fetch.
	Rows func(q listview.Query, page apiclient.Page[T]) (string, error)
	// Failure turns a fetch error into the message shown to the user.
	Failure func(err error) string
	// Skeleton and Detail render the detail modal before and after its record loads.
	Skeleton func(q listview.Query, id string) (string, error)
	Detail   func(ctx context.Context, q listview.Query, id string) (string, error)
	Interval time.Duration
	Clock    listview.Clock
	Log      *slog.Logger
}

func (h *Handler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.Log.With(slog.String("remote", r.RemoteAddr))
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("live upgrade: failed", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	s := &session[T]{
		h:    h,
		conn: conn,
		ctx:  ctx,
		out:  make(chan Reply, sendBuffer),
		log:  log,
	}
	written := make(chan struct{})
	go func() {
		defer close(written)
		s.writeLoop(cancel)
	}()

	initial := listview.ParseQuery(r.URL.Query(), h.FilterKeys)
	s.ctrl = listview.NewController(ctx, initial, h.Fetch, listview.ControllerOptions{
		Interval: h.Interval,
		Clock:    h.Clock,
		OnLoading: func(q listview.Query) {
			s.send(Reply{Type: TypeLoading, Query: q.Encode()})
		},
	})
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		s.forward()
	}()

	log.Debug("live session: open", slog.String("query", initial.Encode()))
	// The first fetch records the total that paging is checked against.
	s.ctrl.Refresh()
	s.readLoop()

	s.ctrl.Close()
	s.closeDetail()
	cancel()
	<-forwarded
	<-written
	conn.Close()
	log.Debug("live session: closed")
}

type session[T any] struct {
	h    *Handler[T]
	conn *websocket.Conn
	ctx  context.Context
	ctrl *listview.Controller[T]
	out  chan Reply
	log  *slog.Logger

	mu           sync.Mutex
	detailSeq    uint64
	detailCancel context.CancelFunc
}

// send queues a reply for the writer; it gives up once the session ends.
func (s *session[T]) send(r Reply) {
	select {
	case s.out <- r:
	case <-s.ctx.Done():
	}
}

// writeLoop is the only goroutine writing data frames to the connection.
func (s *session[T]) writeLoop(cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case r := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(r); err != nil {
				s.log.Warn("live write: failed", slog.String("error", err.Error()))
				cancel()
				s.conn.Close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				cancel()
				s.conn.Close()
				return
			}
		}
	}
}

func (s *session[T]) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, rd, err := s.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("live read: failed", slog.String("error", err.Error()))
			}
			return
		}
		var msg Message
		if err := httpx.DecodeJSON(rd, &msg); err != nil {
			s.send(Reply{Type: TypeError, Message: "Malformed message"})
			continue
		}
		s.handle(msg)
	}
}

func (s *session[T]) handle(msg Message) {
	switch msg.Type {
	case TypeSearch:
		s.ctrl.TypeSearch(stringValue(msg.Value))
	case TypePage:
		n, ok := intValue(msg.Value)
		if !ok {
			s.send(Reply{Type: TypeError, Message: "Invalid page number"})
			return
		}
		s.ctrl.SetPage(n)
	case TypeFilter:
		if !s.knownFilter(msg.Key) {
			s.send(Reply{Type: TypeError, Message: "Unknown filter"})
			return
		}
		s.ctrl.SetFilter(msg.Key, stringValue(msg.Value))
	case TypeView:
		id := strings.TrimSpace(stringValue(msg.Value))
		if id == "" {
			s.closeDetail()
			return
		}
		s.openDetail(id)
	case TypeClose:
		s.closeDetail()
	default:
		s.send(Reply{Type: TypeError, Message: "Unknown message type"})
	}
}

func (s *session[T]) knownFilter(key string) bool {
	for _, k := range s.h.FilterKeys {
		if k == key {
			return true
		}
	}
	return false
}

// forward renders controller results until the controller is closed.
func (s *session[T]) forward() {
	for res := range s.ctrl.Results() {
		q := res.Query.Encode()
		if res.Err != nil {
			s.log.Warn("live fetch: api error", slog.String("query", q), slog.String("error", res.Err.Error()))
			s.send(Reply{Type: TypeError, Query: q, Message: s.h.Failure(res.Err)})
			continue
		}
		html, err := s.h.Rows(res.Query, res.Page)
		if err != nil {
			s.log.Error("live render: failed", slog.String("error", err.Error()))
			s.send(Reply{Type: TypeError, Query: q, Message: "Could not render the list"})
			continue
		}
		s.send(Reply{Type: TypeResult, Query: q, HTML: html})
	}
}

// openDetail supersedes any detail still loading: only the newest id is ever answered.
func (s *session[T]) openDetail(id string) {
	q := s.ctrl.Query()
	s.mu.Lock()
	if s.detailCancel != nil {
		s.detailCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.detailCancel = cancel
	s.detailSeq++
	seq := s.detailSeq
	s.mu.Unlock()

	if html, err := s.h.Skeleton(q, id); err == nil {
		s.send(Reply{Type: TypeSkeleton, ID: id, HTML: html})
	}
	go func() {
		html, err := s.h.Detail(ctx, q, id)
		s.mu.Lock()
		current := seq == s.detailSeq && ctx.Err() == nil
		s.mu.Unlock()
		if !current {
			return
		}
		if err != nil {
			s.log.Error("live detail: render failed", slog.String("id", id), slog.String("error", err.Error()))
			s.send(Reply{Type: TypeError, ID: id, Message: "Could not render the details"})
			return
		}
		s.send(Reply{Type: TypeDetail, ID: id, HTML: html})
	}()
}

func (s *session[T]) closeDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailSeq++
	if s.detailCancel != nil {
		s.detailCancel()
		s.detailCancel = nil
	}
}

func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func intValue(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	n, err := strconv.Atoi(stringValue(raw))
	return n, err == nil
}
