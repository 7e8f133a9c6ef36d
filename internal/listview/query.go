// Package listview holds the state behind every list screen: the URL-backed
// query, pagination bounds, search debouncing and the live controller.
package listview

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"bssaj-admin/internal/httpx"

	"github.com/google/go-querystring/query"
)

const (
	DefaultLimit     = 20
	MaxLimit         = 100
	DebounceInterval = 500 * time.Millisecond
)

// Query is the list state mirrored into the URL.
type Query struct {
	Page    int               `url:"page,omitempty"`
	Limit   int               `url:"limit,omitempty"`
	Search  string            `url:"search,omitempty"`
	Filters map[string]string `url:"-"`
}

func DefaultQuery() Query {
	return Query{Page: 1, Limit: DefaultLimit}
}

// ParseQuery seeds the state from URL params. Malformed page or limit values
// fall back to the defaults; filters not listed in filterKeys are dropped.
func ParseQuery(values url.Values, filterKeys []string) Query {
	q := DefaultQuery()
	if page, limit, err := httpx.ParsePageLimit(values, DefaultLimit, MaxLimit); err == nil {
		q.Page, q.Limit = page, limit
	} else {
		// Keep whichever half is valid.
		if p, _, perr := httpx.ParsePageLimit(url.Values{"page": values["page"]}, DefaultLimit, MaxLimit); perr == nil {
			q.Page = p
		}
		if _, l, lerr := httpx.ParsePageLimit(url.Values{"limit": values["limit"]}, DefaultLimit, MaxLimit); lerr == nil {
			q.Limit = l
		}
	}
	q.Search = strings.TrimSpace(values.Get("search"))
	for _, key := range filterKeys {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			if q.Filters == nil {
				q.Filters = make(map[string]string)
			}
			q.Filters[key] = v
		}
	}
	return q
}

// Values encodes the state for the URL and for the API request.
func (q Query) Values() url.Values {
	v, err := query.Values(q)
	if err != nil {
		v = url.Values{}
	}
	for k, val := range q.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Encode is the canonical form: keys sorted, empty values omitted.
func (q Query) Encode() string {
	return q.Values().Encode()
}

func (q Query) Filter(key string) string {
	return q.Filters[key]
}

func (q Query) HasFilters() bool {
	for _, v := range q.Filters {
		if v != "" {
			return true
		}
	}
	return false
}

func (q Query) clone() Query {
	out := q
	if q.Filters != nil {
		out.Filters = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// WithSearch returns the state for a new search; the page goes back to 1.
func (q Query) WithSearch(search string) Query {
	out := q.clone()
	out.Search = strings.TrimSpace(search)
	out.Page = 1
	return out
}

// WithFilter sets or clears one filter; the page goes back to 1.
func (q Query) WithFilter(key, value string) Query {
	out := q.clone()
	value = strings.TrimSpace(value)
	if value == "" {
		delete(out.Filters, key)
	} else {
		if out.Filters == nil {
			out.Filters = make(map[string]string)
		}
		out.Filters[key] = value
	}
	out.Page = 1
	return out
}

func (q Query) WithPage(page int) Query {
	out := q.clone()
	out.Page = page
	return out
}

// Equal compares two states field by field, ignoring empty filters.
func (q Query) Equal(other Query) bool {
	return q.Encode() == other.Encode()
}

// FilterKeys returns the filter names in a stable order.
func (q Query) FilterKeys() []string {
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
