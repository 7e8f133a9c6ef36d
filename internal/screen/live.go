package screen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/listview"
	"bssaj-admin/internal/live"

	"github.com/gorilla/websocket"
)

// Live upgrades to the websocket channel that re-renders the list in place.
func (s *Screen[T, F]) Live(w http.ResponseWriter, r *http.Request) {
	s.live.ServeHTTP(w, r)
}

func (s *Screen[T, F]) newLive() *live.Handler[T] {
	return &live.Handler[T]{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     s.deps.CheckOrigin,
		},
		FilterKeys: s.filterKeys(),
		Fetch: func(ctx context.Context, q listview.Query) (apiclient.Page[T], error) {
			ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()
			return s.col.List(ctx, q.Values())
		},
		Rows: func(q listview.Query, page apiclient.Page[T]) (string, error) {
			data := s.listData(context.Background(), q)
			s.fillRows(&data, q, page)
			return s.deps.Renderer.Fragment("list", "rows", data)
		},
		Failure: func(err error) string {
			return apiclient.MessageOr(err, fmt.Sprintf("Failed to load %s", s.lower(s.def.Plural)))
		},
		Skeleton: func(q listview.Query, id string) (string, error) {
			mv := s.skeleton(id)
			mv.CloseURL = s.listURL(q)
			return s.deps.Renderer.Fragment("list", "modal", mv)
		},
		Detail: func(ctx context.Context, q listview.Query, id string) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()
			return s.deps.Renderer.Fragment("list", "modal", s.modal(ctx, q, id))
		},
		Log: s.deps.Log.With(slog.String("collection", s.def.Collection)),
	}
}
