package bptree

import (
	"context"

	"github.com/KilimcininKorOglu/bptree/ordering"
	"github.com/KilimcininKorOglu/bptree/storage"
)

// Insert adds key k under value v. If an entry already holding exactly v
// (by the full value+primary ordering) exists, k is added to that entry's
// key bucket (a no-op if k is already present there); otherwise a new
// slot is created, possibly splitting the leaf and propagating the split
// upward, following the teacher's btree/insert.go shape.
func (t *Tree[K, V]) Insert(ctx context.Context, k K, v V) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrNotInitialized
	}

	full := func(a, b V) int { return ordering.Full(t.cmp, a, b) }

	path, leaf, err := t.descendPath(ctx, v)
	if err != nil {
		return err
	}

	idx, found := leafSlotFor(leaf, v, full)
	if found {
		if _, exists := findKeyInBucket(leaf.Buckets[idx], k); !exists {
			leaf.Buckets[idx] = append(leaf.Buckets[idx], k)
			t.writeNodeLocked(leaf)
		}
		return nil
	}

	leaf.Values = insertAt(leaf.Values, idx, v)
	leaf.Buckets = insertAt(leaf.Buckets, idx, []K{k})

	if len(leaf.Values) < t.order {
		t.writeNodeLocked(leaf)
		return nil
	}

	return t.splitLeafAndPropagate(ctx, path, leaf)
}

// splitLeafAndPropagate splits an overfull leaf in half, relinks the leaf
// chain around the new right sibling, and inserts the separator (the
// right sibling's lowest value) into the parent.
func (t *Tree[K, V]) splitLeafAndPropagate(ctx context.Context, path []pathStep[K, V], leaf *storage.Node[K, V]) error {
	mid := leafSplitIndex(t.order)

	right, err := t.allocateNodeLocked(ctx, true)
	if err != nil {
		return err
	}
	right.Values = append([]V(nil), leaf.Values[mid:]...)
	right.Buckets = append([][]K(nil), leaf.Buckets[mid:]...)
	leaf.Values = leaf.Values[:mid]
	leaf.Buckets = leaf.Buckets[:mid]

	right.Next = leaf.Next
	right.Prev = leaf.ID
	if leaf.Next != storage.NoID {
		nextLeaf, err := t.readNodeLocked(ctx, leaf.Next)
		if err != nil {
			return err
		}
		nextLeaf.Prev = right.ID
		t.writeNodeLocked(nextLeaf)
	}
	leaf.Next = right.ID

	t.writeNodeLocked(leaf)
	t.createNodeLocked(right)

	return t.insertIntoParent(ctx, path, leaf.ID, right.Values[0], right.ID)
}

// insertIntoParent threads separator (with right as the new right child of
// left's parent) into the parent named by the last step of path, creating
// a new root if path is empty (left was the root), and recursing upward
// through splitInternalAndPropagate if the parent itself overflows.
func (t *Tree[K, V]) insertIntoParent(ctx context.Context, path []pathStep[K, V], left storage.NodeID, separator V, right storage.NodeID) error {
	if len(path) == 0 {
		root, err := t.allocateNodeLocked(ctx, false)
		if err != nil {
			return err
		}
		root.Values = []V{separator}
		root.Children = []storage.NodeID{left, right}
		t.createNodeLocked(root)

		if err := t.setParentLocked(ctx, left, root.ID); err != nil {
			return err
		}
		if err := t.setParentLocked(ctx, right, root.ID); err != nil {
			return err
		}

		t.setRootLocked(root.ID)
		return nil
	}

	step := path[len(path)-1]
	parent := step.node

	parent.Values = insertAt(parent.Values, step.index, separator)
	parent.Children = insertAt(parent.Children, step.index+1, right)

	if err := t.setParentLocked(ctx, right, parent.ID); err != nil {
		return err
	}

	if len(parent.Children) <= t.order {
		t.writeNodeLocked(parent)
		return nil
	}

	return t.splitInternalAndPropagate(ctx, path[:len(path)-1], parent)
}

// splitInternalAndPropagate splits an overfull internal node, promoting
// its middle separator into the parent rather than duplicating it (the
// teacher's internal-split shape, distinct from the leaf split above).
func (t *Tree[K, V]) splitInternalAndPropagate(ctx context.Context, path []pathStep[K, V], node *storage.Node[K, V]) error {
	mid := splitIndex(t.order)
	promoted := node.Values[mid]

	right, err := t.allocateNodeLocked(ctx, false)
	if err != nil {
		return err
	}
	right.Values = append([]V(nil), node.Values[mid+1:]...)
	right.Children = append([]storage.NodeID(nil), node.Children[mid+1:]...)
	node.Values = node.Values[:mid]
	node.Children = node.Children[:mid+1]

	for _, childID := range right.Children {
		if err := t.setParentLocked(ctx, childID, right.ID); err != nil {
			return err
		}
	}

	t.writeNodeLocked(node)
	t.createNodeLocked(right)

	return t.insertIntoParent(ctx, path, node.ID, promoted, right.ID)
}

// setParentLocked updates a node's Parent pointer. Caller must hold t.mu.
func (t *Tree[K, V]) setParentLocked(ctx context.Context, id storage.NodeID, parent storage.NodeID) error {
	n, err := t.readNodeLocked(ctx, id)
	if err != nil {
		return err
	}
	n.Parent = parent
	t.writeNodeLocked(n)
	return nil
}
