package mockstore

import (
	"slices"

	"btrfsusage/pkg/store"
)

// Tree is an in-memory metadata tree answering searches like the kernel does.
type Tree struct {
	TreeID uint64
	Items  []store.SearchItem
	Calls  []store.KeyRange
	Err    error // Returned from the search numbered FailAt (1-based)
	FailAt int
}

// Add inserts items keeping the tree in key order.
func (t *Tree) Add(items ...store.SearchItem) {
	t.Items = append(t.Items, items...)
	slices.SortFunc(t.Items, func(a, b store.SearchItem) int {
		return a.Key.Compare(b.Key)
	})
}

// Search returns up to maxItems items within r.
func (t *Tree) Search(treeID uint64, r store.KeyRange, maxItems int) ([]store.SearchItem, error) {
	t.Calls = append(t.Calls, r)
	if t.Err != nil && len(t.Calls) == t.FailAt {
		return nil, t.Err
	}
	if treeID != t.TreeID {
		return nil, nil
	}

	var out []store.SearchItem
	for _, item := range t.Items {
		if len(out) == maxItems {
			break
		}
		if r.Contains(item.Key) {
			out = append(out, item)
		}
	}
	return out, nil
}
