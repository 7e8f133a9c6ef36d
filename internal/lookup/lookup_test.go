package lookup

import "testing"

type user struct {
	ID    string
	Name  string
	Email string
}

func TestTableFromSlice(t *testing.T) {
	tbl := FromSlice([]user{
		{ID: "u1", Name: "Rahim"},
		{ID: "u2", Name: "Karim"},
		{ID: "u1", Name: "Rahim Uddin"},
	}, func(u user) string { return u.ID })

	if tbl.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", tbl.Len())
	}
	u, ok := tbl.Get("u1")
	if !ok || u.Name != "Rahim Uddin" {
		t.Fatalf("expected latest duplicate, got %+v", u)
	}
	if _, ok := tbl.Get("missing"); ok {
		t.Fatalf("unexpected hit")
	}
	vals := tbl.Values()
	if vals[0].ID != "u1" || vals[1].ID != "u2" {
		t.Fatalf("unexpected order %+v", vals)
	}
}

func TestZeroTableIsUsable(t *testing.T) {
	var tbl Table[string, user]
	if _, ok := tbl.Get("x"); ok || tbl.Len() != 0 || len(tbl.Values()) != 0 {
		t.Fatalf("zero table must be empty")
	}
}
