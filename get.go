package bptree

import (
	"context"

	"github.com/KilimcininKorOglu/bptree/ordering"
)

// Exists reports whether the (k, v) pair is present.
func (t *Tree[K, V]) Exists(ctx context.Context, k K, v V) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return false, ErrNotInitialized
	}

	full := func(a, b V) int { return ordering.Full(t.cmp, a, b) }

	leaf, err := t.descendToLeaf(ctx, v, full)
	if err != nil {
		return false, err
	}

	idx, found := leafSlotFor(leaf, v, full)
	if !found {
		return false, nil
	}

	_, exists := findKeyInBucket(leaf.Buckets[idx], k)
	return exists, nil
}

// Get returns every value k has been inserted under. Because external
// keys play no part in the tree's ordering, this is a full linear scan of
// the leaf chain — the teacher's pattern for key-by-key lookup over a
// value-ordered index, generalized from a fixed-width key to K.
func (t *Tree[K, V]) Get(ctx context.Context, k K) ([]V, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return nil, ErrNotInitialized
	}

	var out []V

	leaf, err := t.findLeftmostLeafLocked(ctx)
	if err != nil {
		return nil, err
	}

	for leaf != nil {
		for i, bucket := range leaf.Buckets {
			if _, ok := findKeyInBucket(bucket, k); ok {
				out = append(out, leaf.Values[i])
			}
		}
		if leaf.Next == "" {
			break
		}
		leaf, err = t.readNodeLocked(ctx, leaf.Next)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// IsEmpty reports whether the tree holds no entries.
func (t *Tree[K, V]) IsEmpty(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return false, ErrNotInitialized
	}

	leaf, err := t.findLeftmostLeafLocked(ctx)
	if err != nil {
		return false, err
	}
	return leaf == nil || (len(leaf.Values) == 0 && leaf.Next == ""), nil
}
