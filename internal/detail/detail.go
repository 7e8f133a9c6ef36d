// Package detail loads and lays out the read-only detail modal of a resource.
package detail

import (
	"context"
	"errors"
	"strings"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/view"
)

type Phase string

const (
	PhaseClosed   Phase = "closed"
	PhaseLoading  Phase = "loading"
	PhaseError    Phase = "error"
	PhaseNotFound Phase = "not_found"
	PhaseReady    Phase = "ready"
)

// Standard section titles, in display order.
const (
	SectionIdentity      = "Overview"
	SectionDetails       = "Details"
	SectionRelationships = "Related"
	SectionStatus        = "Status"
	SectionTimestamps    = "Timestamps"
	SectionSystem        = "System"
)

// Modal identifies the resource a detail modal is showing.
type Modal struct {
	ID   string
	Open bool
}

func (m Modal) Active() bool {
	return m.Open && strings.TrimSpace(m.ID) != ""
}

type Item struct {
	Label string
	Cell  view.Cell
}

type Section struct {
	Title string
	Items []Item
}

type State[T any] struct {
	Phase   Phase
	ID      string
	Item    T
	Message string
}

func (s State[T]) Ready() bool { return s.Phase == PhaseReady }

// Load fetches the resource only while the modal is open on an id.
func Load[T any](ctx context.Context, m Modal, fetch func(ctx context.Context, id string) (T, error), fallback string) State[T] {
	if !m.Active() {
		return State[T]{Phase: PhaseClosed}
	}
	id := strings.TrimSpace(m.ID)
	item, err := fetch(ctx, id)
	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		return State[T]{Phase: PhaseNotFound, ID: id, Message: apiclient.MessageOr(err, "This record could not be found")}
	case err != nil:
		return State[T]{Phase: PhaseError, ID: id, Message: apiclient.MessageOr(err, fallback)}
	}
	return State[T]{Phase: PhaseReady, ID: id, Item: item}
}

// Loading is the state shown while Load is in flight.
func Loading[T any](m Modal) State[T] {
	if !m.Active() {
		return State[T]{Phase: PhaseClosed}
	}
	return State[T]{Phase: PhaseLoading, ID: strings.TrimSpace(m.ID)}
}

// Skeleton keeps the shape of the eventual layout while values are loading.
func Skeleton(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		items := make([]Item, len(s.Items))
		for j, it := range s.Items {
			items[j] = Item{Label: it.Label, Cell: view.Cell{Kind: view.CellSkeleton}}
		}
		out[i] = Section{Title: s.Title, Items: items}
	}
	return out
}

// Compact drops sections with no items.
func Compact(sections []Section) []Section {
	out := sections[:0:0]
	for _, s := range sections {
		if len(s.Items) > 0 {
			out = append(out, s)
		}
	}
	return out
}
