package listview

type Empty int

const (
	EmptyNone Empty = iota
	// EmptyNoResults: nothing matches the current search or filters; offer "clear search".
	EmptyNoResults
	// EmptyNoResources: the collection itself is empty; offer "create first".
	EmptyNoResources
)

func EmptyState(total int, q Query) Empty {
	if total > 0 {
		return EmptyNone
	}
	if q.Search != "" || q.HasFilters() {
		return EmptyNoResults
	}
	return EmptyNoResources
}
