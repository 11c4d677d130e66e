package bptree

import (
	"context"

	"github.com/KilimcininKorOglu/bptree/ordering"
	"github.com/KilimcininKorOglu/bptree/query"
	"github.com/KilimcininKorOglu/bptree/storage"
)

// pathStep records one internal node visited on a root-to-leaf descent,
// and the index of the child edge taken from it. Mutating descents
// (insert/delete) walk this path back up to propagate splits and merges,
// the same way the teacher's btree package threads a parent-pointer path
// rather than storing parent links on disk.
type pathStep[K comparable, V any] struct {
	node  *storage.Node[K, V]
	index int
}

// descendPath walks from the root to the leaf that would hold v, using
// the full (value, primary) comparator at every internal level. Returns
// the path of internal nodes visited (with the child index taken from
// each) and the leaf reached.
func (t *Tree[K, V]) descendPath(ctx context.Context, v V) ([]pathStep[K, V], *storage.Node[K, V], error) {
	full := func(a, b V) int { return ordering.Full(t.cmp, a, b) }

	var path []pathStep[K, V]
	node, err := t.readNodeLocked(ctx, t.root)
	if err != nil {
		return nil, nil, err
	}

	for !node.Leaf {
		idx := lowerBound(node.Values, v, full)
		if idx >= len(node.Children) {
			idx = len(node.Children) - 1
		}
		path = append(path, pathStep[K, V]{node: node, index: idx})

		child, err := t.readNodeLocked(ctx, node.Children[idx])
		if err != nil {
			return nil, nil, err
		}
		node = child
	}

	return path, node, nil
}

// findLeftmostLeafLocked walks the leftmost child edge from the root down
// to the leftmost leaf. Caller must hold t.mu.
func (t *Tree[K, V]) findLeftmostLeafLocked(ctx context.Context) (*storage.Node[K, V], error) {
	if t.root == storage.NoID {
		return nil, nil
	}

	node, err := t.readNodeLocked(ctx, t.root)
	if err != nil {
		return nil, err
	}
	for !node.Leaf {
		if len(node.Children) == 0 {
			return nil, ErrStructural
		}
		node, err = t.readNodeLocked(ctx, node.Children[0])
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// findRightmostLeafLocked walks the rightmost child edge from the root
// down to the rightmost leaf. Caller must hold t.mu.
func (t *Tree[K, V]) findRightmostLeafLocked(ctx context.Context) (*storage.Node[K, V], error) {
	if t.root == storage.NoID {
		return nil, nil
	}

	node, err := t.readNodeLocked(ctx, t.root)
	if err != nil {
		return nil, err
	}
	for !node.Leaf {
		if len(node.Children) == 0 {
			return nil, ErrStructural
		}
		node, err = t.readNodeLocked(ctx, node.Children[len(node.Children)-1])
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// descendForScan reaches the leaf (and slot index within it) a query scan
// should begin from, per the start kind chosen by the query planner.
// setArg carries the value set for the two StartLowestOfSet* kinds.
func (t *Tree[K, V]) descendForScan(ctx context.Context, kind query.StartKind, target V, setArg []V) (*storage.Node[K, V], int, error) {
	switch kind {
	case query.StartLeftmostLeaf:
		leaf, err := t.findLeftmostLeafLocked(ctx)
		return leaf, 0, err

	case query.StartDescendFull:
		leaf, err := t.descendToLeaf(ctx, target, func(a, b V) int { return ordering.Full(t.cmp, a, b) })
		if err != nil {
			return nil, 0, err
		}
		idx := lowerBound(leaf.Values, target, func(a, b V) int { return ordering.Full(t.cmp, a, b) })
		return leaf, idx, nil

	case query.StartDescendPrimary:
		leaf, err := t.descendToLeaf(ctx, target, t.cmp.PrimaryAsc)
		if err != nil {
			return nil, 0, err
		}
		idx := lowerBound(leaf.Values, target, t.cmp.PrimaryAsc)
		return leaf, idx, nil

	case query.StartDescendPrimaryRightmost:
		leaf, err := t.descendToLeafUpper(ctx, target, t.cmp.PrimaryAsc)
		if err != nil {
			return nil, 0, err
		}
		idx := upperBound(leaf.Values, target, t.cmp.PrimaryAsc) - 1
		return leaf, idx, nil

	case query.StartLowestOfSetFull:
		return t.descendForLowestOfSet(ctx, setArg, func(a, b V) int { return ordering.Full(t.cmp, a, b) })

	case query.StartLowestOfSetPrimary:
		return t.descendForLowestOfSet(ctx, setArg, t.cmp.PrimaryAsc)

	default:
		return nil, 0, ErrStructural
	}
}

// descendToLeaf walks from the root to the leaf that would hold target
// using cmp at every internal level and lowerBound child selection.
func (t *Tree[K, V]) descendToLeaf(ctx context.Context, target V, cmp func(a, b V) int) (*storage.Node[K, V], error) {
	node, err := t.readNodeLocked(ctx, t.root)
	if err != nil {
		return nil, err
	}
	for !node.Leaf {
		idx := lowerBound(node.Values, target, cmp)
		if idx >= len(node.Children) {
			idx = len(node.Children) - 1
		}
		node, err = t.readNodeLocked(ctx, node.Children[idx])
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// descendToLeafUpper is descendToLeaf's rightmost-biased counterpart,
// selecting the child edge via upperBound so ties on cmp land in the
// right sibling. Used for the Lt/Lte family, which scans backward from
// just before the first value greater than target.
func (t *Tree[K, V]) descendToLeafUpper(ctx context.Context, target V, cmp func(a, b V) int) (*storage.Node[K, V], error) {
	node, err := t.readNodeLocked(ctx, t.root)
	if err != nil {
		return nil, err
	}
	for !node.Leaf {
		idx := upperBound(node.Values, target, cmp)
		if idx >= len(node.Children) {
			idx = len(node.Children) - 1
		}
		node, err = t.readNodeLocked(ctx, node.Children[idx])
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// descendForLowestOfSet descends to the leaf holding the smallest member
// of set under cmp, for the Or/PrimaryOr drivers (spec.md §4.6): the scan
// starts at the lowest candidate and runs forward, the driver's Or/
// PrimaryOr verifier rejecting values not in the set along the way.
func (t *Tree[K, V]) descendForLowestOfSet(ctx context.Context, set []V, cmp func(a, b V) int) (*storage.Node[K, V], int, error) {
	if len(set) == 0 {
		return nil, 0, nil
	}

	lowest := set[0]
	for _, v := range set[1:] {
		if cmp(v, lowest) < 0 {
			lowest = v
		}
	}

	leaf, err := t.descendToLeaf(ctx, lowest, cmp)
	if err != nil {
		return nil, 0, err
	}
	idx := lowerBound(leaf.Values, lowest, cmp)
	return leaf, idx, nil
}
