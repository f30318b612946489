// Package linking keeps parent and child collections referentially consistent
// after children have been filtered out.
package linking

// Parent is a parent record that references children by id.
type Parent[K comparable] interface {
	ChildIDs() []K
}

// Linked is a parent together with the child ids that survived filtering.
type Linked[P any, K comparable] struct {
	Parent   P
	ChildIDs []K
}

// Stats counts what Link dropped.
type Stats struct {
	Parents        int
	Kept           int
	DroppedParents int
	DroppedRefs    int
}

// Link filters each parent's references down to usable ids, preserving the
// original order, and keeps only parents with at least minChildren survivors.
func Link[P Parent[K], K comparable](parents []P, usable func(K) bool, minChildren int) ([]Linked[P, K], Stats) {
	stats := Stats{Parents: len(parents)}
	out := make([]Linked[P, K], 0, len(parents))
	for _, parent := range parents {
		refs := parent.ChildIDs()
		kept := make([]K, 0, len(refs))
		for _, id := range refs {
			if usable(id) {
				kept = append(kept, id)
			}
		}
		stats.DroppedRefs += len(refs) - len(kept)
		if len(kept) < minChildren {
			stats.DroppedParents++
			continue
		}
		out = append(out, Linked[P, K]{Parent: parent, ChildIDs: kept})
	}
	stats.Kept = len(out)
	return out, stats
}

// FilterByParent returns the children whose parent id is in keep, in their
// original order.
func FilterByParent[C any, K comparable](children []C, parentOf func(C) K, keep map[K]struct{}) []C {
	out := make([]C, 0)
	for _, child := range children {
		if _, ok := keep[parentOf(child)]; ok {
			out = append(out, child)
		}
	}
	return out
}

// ChildSet returns the distinct child ids referenced by linked parents, in
// first-seen order.
func ChildSet[P any, K comparable](linked []Linked[P, K]) []K {
	seen := make(map[K]struct{})
	out := make([]K, 0)
	for _, l := range linked {
		for _, id := range l.ChildIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
