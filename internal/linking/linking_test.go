package linking

import (
	"slices"
	"testing"
)

type outfit struct {
	id    string
	items []string
}

func (o outfit) ChildIDs() []string { return o.items }

func usableSet(ids ...string) func(string) bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(id string) bool { return set[id] }
}

func TestLinkPreservesOrderAndDropsUnusable(t *testing.T) {
	parents := []outfit{
		{"o1", []string{"c", "x", "a", "b"}},
		{"o2", []string{"x", "a"}},
		{"o3", []string{"y", "z"}},
		{"o4", []string{"b", "c"}},
	}
	linked, stats := Link(parents, usableSet("a", "b", "c"), 2)

	if len(linked) != 2 {
		t.Fatalf("expected 2 parents, got %d", len(linked))
	}
	if linked[0].Parent.id != "o1" || !slices.Equal(linked[0].ChildIDs, []string{"c", "a", "b"}) {
		t.Fatalf("unexpected first parent: %+v", linked[0])
	}
	if linked[1].Parent.id != "o4" || !slices.Equal(linked[1].ChildIDs, []string{"b", "c"}) {
		t.Fatalf("unexpected second parent: %+v", linked[1])
	}
	want := Stats{Parents: 4, Kept: 2, DroppedParents: 2, DroppedRefs: 4}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestLinkNeverFabricatesReferences(t *testing.T) {
	parents := []outfit{
		{"o1", []string{"a", "b", "a"}},
		{"o2", []string{"d", "b", "c", "e"}},
	}
	usable := usableSet("a", "b", "c", "d")
	linked, _ := Link(parents, usable, 0)
	for i, l := range linked {
		orig := parents[i].items
		pos := 0
		for _, id := range l.ChildIDs {
			if !usable(id) {
				t.Fatalf("unusable id %q retained", id)
			}
			for pos < len(orig) && orig[pos] != id {
				pos++
			}
			if pos == len(orig) {
				t.Fatalf("id %q not in original order %v", id, orig)
			}
			pos++
		}
	}
}

func TestLinkZeroThresholdKeepsEmptyParents(t *testing.T) {
	linked, stats := Link([]outfit{{"o1", nil}}, usableSet(), 0)
	if len(linked) != 1 || stats.DroppedParents != 0 {
		t.Fatalf("expected empty parent kept, got %+v %+v", linked, stats)
	}
}

func TestFilterByParent(t *testing.T) {
	type ann struct{ id, image int }
	anns := []ann{{1, 10}, {2, 11}, {3, 10}, {4, 12}}
	keep := map[int]struct{}{10: {}, 12: {}}
	got := FilterByParent(anns, func(a ann) int { return a.image }, keep)
	if len(got) != 3 || got[0].id != 1 || got[1].id != 3 || got[2].id != 4 {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if got := FilterByParent(anns, func(a ann) int { return a.image }, nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestChildSetDeduplicatesInFirstSeenOrder(t *testing.T) {
	linked := []Linked[outfit, string]{
		{ChildIDs: []string{"b", "a"}},
		{ChildIDs: []string{"a", "c"}},
	}
	if got := ChildSet(linked); !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Fatalf("ChildSet = %v", got)
	}
}
