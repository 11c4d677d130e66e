package bptree

import "github.com/KilimcininKorOglu/bptree/storage"

// lowerBound returns the first index i in values such that
// cmp(values[i], target) >= 0 (the leftmost insertion point for target).
// values must already be sorted ascending by cmp. Used for the two
// left-biased descent modes: full-key insertion/equality descent, and
// primary-only descent.
func lowerBound[V any](values []V, target V, cmp func(a, b V) int) int {
	lo, hi := 0, len(values)
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(values[mid], target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBound returns the first index i in values such that
// cmp(values[i], target) > 0 (the rightmost insertion point for target,
// one past every entry equal to target). Used for rightmost-primary
// descent, where ties on the primary key must land on the right sibling.
func upperBound[V any](values []V, target V, cmp func(a, b V) int) int {
	lo, hi := 0, len(values)
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(values[mid], target) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// insertAt inserts x into s at index i, shifting subsequent elements right.
func insertAt[T any](s []T, i int, x T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = x
	return s
}

// removeAt removes the element at index i from s, shifting subsequent
// elements left.
func removeAt[T any](s []T, i int) []T {
	copy(s[i:], s[i+1:])
	return s[:len(s)-1]
}

// findKeyInBucket reports whether key is present in bucket, and its index.
func findKeyInBucket[K comparable](bucket []K, key K) (int, bool) {
	for i, k := range bucket {
		if k == key {
			return i, true
		}
	}
	return -1, false
}

// leafSlotFor locates the slot in a leaf node holding value v under the
// ordering given by cmp (callers pass the full (value, primary) ordering),
// returning its index and whether an exact match under cmp was found at
// that index.
func leafSlotFor[K comparable, V any](leaf *storage.Node[K, V], v V, cmp func(a, b V) int) (int, bool) {
	idx := lowerBound(leaf.Values, v, cmp)
	if idx < len(leaf.Values) && cmp(leaf.Values[idx], v) == 0 {
		return idx, true
	}
	return idx, false
}

// minOccupancy is the minimum number of separators a non-root internal
// node of the given order may hold before it underflows: ceil(order/2) - 1.
// Leaves use leafMinOccupancy instead — the two formulas diverge for even
// order and must not be shared.
func minOccupancy(order int) int {
	return (order+1)/2 - 1
}

// splitIndex is the index at which a full internal node of the given
// order is split, promoting node.Values[splitIndex] into the parent
// rather than duplicating it: ceil(order/2) - 1, the teacher's mid
// calculation in btree/insert.go. Leaves split at leafSplitIndex instead.
func splitIndex(order int) int {
	return (order+1)/2 - 1
}

// leafMinOccupancy is the minimum number of slots a non-root leaf of the
// given order may hold before it underflows: ceil((order-1)/2), which
// under Go's floored integer division is order/2.
func leafMinOccupancy(order int) int {
	return order / 2
}

// leafSplitIndex is the index at which a full leaf of the given order is
// split: the left leaf keeps ceil(order/2) slots, the teacher's
// splitPoint = (len+1)/2 in btree/insert.go.
func leafSplitIndex(order int) int {
	return (order + 1) / 2
}
