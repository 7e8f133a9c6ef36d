package listview

import (
	"net/url"
	"testing"
)

func TestParseQueryDefaults(t *testing.T) {
	q := ParseQuery(url.Values{}, nil)
	if q.Page != 1 || q.Limit != DefaultLimit || q.Search != "" {
		t.Fatalf("unexpected defaults: %+v", q)
	}
}

func TestParseQueryKeepsValidHalf(t *testing.T) {
	q := ParseQuery(url.Values{"page": {"abc"}, "limit": {"50"}}, nil)
	if q.Page != 1 || q.Limit != 50 {
		t.Fatalf("expected page fallback with limit kept, got %+v", q)
	}
	q = ParseQuery(url.Values{"page": {"3"}, "limit": {"1000"}}, nil)
	if q.Page != 3 || q.Limit != DefaultLimit {
		t.Fatalf("expected limit fallback with page kept, got %+v", q)
	}
}

func TestParseQueryFilters(t *testing.T) {
	q := ParseQuery(url.Values{"status": {"PENDING"}, "other": {"x"}, "search": {"  ali "}}, []string{"status"})
	if q.Filter("status") != "PENDING" || q.Filter("other") != "" {
		t.Fatalf("unexpected filters: %+v", q.Filters)
	}
	if q.Search != "ali" {
		t.Fatalf("expected trimmed search, got %q", q.Search)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	q := Query{Page: 2, Limit: 20, Search: "spring", Filters: map[string]string{"agency_id": "a1"}}
	got := q.Encode()
	if got != "agency_id=a1&limit=20&page=2&search=spring" {
		t.Fatalf("unexpected encoding: %s", got)
	}
	values, _ := url.ParseQuery(got)
	back := ParseQuery(values, []string{"agency_id"})
	if !back.Equal(q) {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, q)
	}
}

func TestSearchAndFilterResetPage(t *testing.T) {
	q := Query{Page: 4, Limit: 20}
	if got := q.WithSearch("x"); got.Page != 1 || got.Search != "x" {
		t.Fatalf("search should reset page: %+v", got)
	}
	f := q.WithFilter("status", "PAID")
	if f.Page != 1 || f.Filter("status") != "PAID" {
		t.Fatalf("filter should reset page: %+v", f)
	}
	if q.Filters != nil {
		t.Fatalf("WithFilter must not mutate the receiver")
	}
	if cleared := f.WithFilter("status", ""); cleared.HasFilters() {
		t.Fatalf("empty value should clear the filter")
	}
}

func TestPaginationGoTo(t *testing.T) {
	q := Query{Page: 1, Limit: 20}
	p := NewPagination(q, 41)
	if p.TotalPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", p.TotalPages())
	}
	if _, ok := p.GoTo(q, 0); ok {
		t.Fatalf("page 0 must be a no-op")
	}
	if _, ok := p.GoTo(q, 4); ok {
		t.Fatalf("page beyond total must be a no-op")
	}
	if _, ok := p.GoTo(q, 1); ok {
		t.Fatalf("current page must be a no-op")
	}
	next, ok := p.GoTo(q, 3)
	if !ok || next.Page != 3 {
		t.Fatalf("expected move to page 3, got %+v", next)
	}
}

func TestPaginationBounds(t *testing.T) {
	p := Pagination{Page: 3, Limit: 20, Total: 41}
	if p.First() != 41 || p.Last() != 41 || p.HasNext() || !p.HasPrev() {
		t.Fatalf("unexpected bounds: first=%d last=%d", p.First(), p.Last())
	}
	empty := Pagination{Page: 1, Limit: 20}
	if empty.TotalPages() != 0 || empty.First() != 0 || empty.Clamp(5) != 1 {
		t.Fatalf("unexpected empty pagination")
	}
}

func TestPaginationWindow(t *testing.T) {
	p := Pagination{Page: 5, Limit: 10, Total: 100}
	got := p.Window(1)
	want := []int{1, 0, 4, 5, 6, 0, 10}
	if len(got) != len(want) {
		t.Fatalf("unexpected window %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected window %v", got)
		}
	}
}

func TestEmptyState(t *testing.T) {
	if EmptyState(3, DefaultQuery()) != EmptyNone {
		t.Fatalf("expected no empty state with rows")
	}
	if EmptyState(0, DefaultQuery()) != EmptyNoResources {
		t.Fatalf("expected no-resources state")
	}
	if EmptyState(0, DefaultQuery().WithSearch("zzz")) != EmptyNoResults {
		t.Fatalf("expected no-results state for search")
	}
	if EmptyState(0, DefaultQuery().WithFilter("status", "PAID")) != EmptyNoResults {
		t.Fatalf("expected no-results state for filter")
	}
}
