package bptree

import (
	"context"

	"github.com/KilimcininKorOglu/bptree/query"
)

// Where compiles cond into a plan and returns a Cursor streaming every
// (key, value) pair matching it, ordered ascending by value unless order
// is given as query.Desc.
func (t *Tree[K, V]) Where(ctx context.Context, cond query.Condition[V], order ...query.Order) (*Cursor[K, V], error) {
	return t.where(ctx, cond, resolveOrder(order))
}

// Keys returns a cursor over every matching pair, like Where; callers
// that only need keys take the first result of Pair. If filter is
// non-empty, only keys present in filter are returned — the bounded
// "keys" query variant used to intersect an index scan against a known
// candidate set rather than materializing the full match set.
func (t *Tree[K, V]) Keys(ctx context.Context, cond query.Condition[V], filter map[K]struct{}, order ...query.Order) (*Cursor[K, V], error) {
	c, err := t.where(ctx, cond, resolveOrder(order))
	if err != nil {
		return nil, err
	}
	if len(filter) > 0 {
		c.keyFilter = filter
	}
	return c, nil
}

// resolveOrder returns the single order in order, or query.Asc — the
// spec's default — if none was given.
func resolveOrder(order []query.Order) query.Order {
	if len(order) > 0 {
		return order[0]
	}
	return query.Asc
}

// All materializes every matching (key, value) pair. Prefer Where for
// large result sets; All is for callers who need the whole slice anyway.
func (t *Tree[K, V]) All(ctx context.Context, cond query.Condition[V], order ...query.Order) ([]Entry[K, V], error) {
	c, err := t.Where(ctx, cond, order...)
	if err != nil {
		return nil, err
	}

	var out []Entry[K, V]
	for c.Next() {
		k, v := c.Pair()
		out = append(out, Entry[K, V]{Key: k, Value: v})
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Entry pairs a key with its indexed value, the materialized form of what
// a Cursor streams.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}
