// Package lookup builds scoped cross-reference tables, such as the users a
// member form can pick from. Tables are built per render from an explicit list.
package lookup

type Table[K comparable, V any] struct {
	items map[K]V
	order []K
}

// FromSlice indexes items by key; later duplicates replace earlier ones.
func FromSlice[K comparable, V any](items []V, key func(V) K) Table[K, V] {
	t := Table[K, V]{items: make(map[K]V, len(items))}
	for _, it := range items {
		k := key(it)
		if _, seen := t.items[k]; !seen {
			t.order = append(t.order, k)
		}
		t.items[k] = it
	}
	return t
}

func (t Table[K, V]) Get(k K) (V, bool) {
	v, ok := t.items[k]
	return v, ok
}

func (t Table[K, V]) Len() int {
	return len(t.order)
}

// Values returns the items in first-seen order.
func (t Table[K, V]) Values() []V {
	out := make([]V, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.items[k])
	}
	return out
}
