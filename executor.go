package bptree

import (
	"context"

	"github.com/KilimcininKorOglu/bptree/ordering"
	"github.com/KilimcininKorOglu/bptree/query"
	"github.com/KilimcininKorOglu/bptree/storage"
)

// Cursor streams (K, V) pairs matching a compiled query plan, one leaf
// slot's key bucket at a time. It prefetches the next leaf on a
// background goroutine while the caller evaluates the current one, so a
// predicate-heavy consumer overlaps its own CPU time with the next
// node's I/O instead of paying for it serially.
type Cursor[K comparable, V any] struct {
	tree *Tree[K, V]
	ctx  context.Context

	direction int
	leaf      *storage.Node[K, V]
	slot      int
	bucketIdx int

	hasDriver  bool
	driverTag  query.Tag
	driverPred query.Predicate[V]
	earlyTerm  bool
	endKind    query.EndKind
	highest    V
	hasHighest bool

	postFilter []query.Predicate[V]
	verifiers  map[query.Tag]func(ordering.Comparator[V], V, any) bool
	cmp        ordering.Comparator[V]

	key K
	val V

	keyFilter map[K]struct{}

	done bool
	err  error

	pending chan fetchResult[K, V]

	// materialized cursors serve Next/Pair from buf instead of walking the
	// leaf chain — used when the requested order runs against the driver's
	// natural scan direction (see where's reversal below).
	materialized bool
	buf          []Entry[K, V]
	bufIdx       int
}

type fetchResult[K comparable, V any] struct {
	node *storage.Node[K, V]
	err  error
}

// where starts a cursor over cond, acquiring the tree's lock only long
// enough to resolve the starting leaf; the cursor walks unlocked
// afterward, taking t.mu per node fetch like every other Tree method.
//
// Each driver rule scans in a fixed natural direction (query/tables.go's
// Direction: 1 for ascending drivers, -1 for the lt/lte/primaryLt/
// primaryLte family, which descend to the rightmost match and walk
// backward). When order disagrees with that natural direction, the
// cursor is drained and replayed in reverse rather than re-deriving a
// start point for the opposite direction.
func (t *Tree[K, V]) where(ctx context.Context, cond query.Condition[V], order query.Order) (*Cursor[K, V], error) {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return nil, ErrNotInitialized
	}

	p := compilePlan(cond)

	var target V
	var setArg []V
	startKind := p.rule.Start
	if p.hasDriver {
		target = p.target
		setArg = p.set
	}

	leaf, slot, err := t.descendForScan(ctx, startKind, target, setArg)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}

	driverPred, err := t.resolveLikeArg(p.predicate)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	postFilter := make([]query.Predicate[V], len(p.postFilter))
	for i, pred := range p.postFilter {
		resolved, err := t.resolveLikeArg(pred)
		if err != nil {
			t.mu.Unlock()
			return nil, err
		}
		postFilter[i] = resolved
	}

	c := &Cursor[K, V]{
		tree:       t,
		ctx:        ctx,
		direction:  p.rule.Direction,
		leaf:       leaf,
		slot:       slot,
		bucketIdx:  0,
		hasDriver:  p.hasDriver,
		driverTag:  p.driver,
		driverPred: driverPred,
		earlyTerm:  p.rule.EarlyTerminate,
		endKind:    p.rule.End,
		postFilter: postFilter,
		verifiers:  t.verifiers,
		cmp:        t.cmp,
	}

	if set, ok := asSet(p); ok && len(set) > 0 {
		c.hasHighest = true
		c.highest = highestOf(set, endCmp(t.cmp, p.rule.End))
	}

	if leaf != nil {
		t.metrics.ScannedLeaf()
		c.prefetch(neighborID(leaf, c.direction))
	}

	t.mu.Unlock()

	natural := query.Asc
	if p.rule.Direction < 0 {
		natural = query.Desc
	}
	if order != natural {
		return materializeReversed(c)
	}
	return c, nil
}

// materializeReversed drains c in its natural scan order and replays the
// result backward, for a requested order that runs against the driver's
// natural direction (see where above).
func materializeReversed[K comparable, V any](c *Cursor[K, V]) (*Cursor[K, V], error) {
	var buf []Entry[K, V]
	for c.Next() {
		k, v := c.Pair()
		buf = append(buf, Entry[K, V]{Key: k, Value: v})
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return &Cursor[K, V]{materialized: true, buf: buf}, nil
}

// resolveLikeArg compiles a Like predicate's raw string pattern into the
// regexp.Regexp the verifier table expects, through the tree's pattern
// cache. Non-Like predicates pass through unchanged.
func (t *Tree[K, V]) resolveLikeArg(pred query.Predicate[V]) (query.Predicate[V], error) {
	if pred.Tag != query.Like {
		return pred, nil
	}
	pattern, _ := pred.Arg.(string)
	re, err := t.pattern.Compile(pattern)
	if err != nil {
		return pred, err
	}
	pred.Arg = re
	return pred, nil
}

func asSet[V any](p plan[V]) ([]V, bool) {
	if p.set != nil {
		return p.set, true
	}
	return nil, false
}

func endCmp[V any](cmp ordering.Comparator[V], kind query.EndKind) func(a, b V) int {
	if kind == query.EndHighestOfSetPrimary {
		return cmp.PrimaryAsc
	}
	return func(a, b V) int { return ordering.Full(cmp, a, b) }
}

func highestOf[V any](set []V, cmp func(a, b V) int) V {
	best := set[0]
	for _, v := range set[1:] {
		if cmp(v, best) > 0 {
			best = v
		}
	}
	return best
}

func neighborID[K comparable, V any](leaf *storage.Node[K, V], direction int) storage.NodeID {
	if direction < 0 {
		return leaf.Prev
	}
	return leaf.Next
}

// prefetch launches a background fetch of id (a no-op immediate result if
// id is empty), replacing any previous pending fetch.
func (c *Cursor[K, V]) prefetch(id storage.NodeID) {
	ch := make(chan fetchResult[K, V], 1)
	c.pending = ch

	if id == storage.NoID {
		ch <- fetchResult[K, V]{nil, nil}
		return
	}

	go func() {
		node, err := c.tree.fetchNode(c.ctx, id)
		ch <- fetchResult[K, V]{node, err}
	}()
}

// Next advances the cursor to the next matching pair, returning false
// once the scan is exhausted or fails (check Err).
func (c *Cursor[K, V]) Next() bool {
	if c.materialized {
		for !c.done && c.bufIdx < len(c.buf) {
			e := c.buf[c.bufIdx]
			c.bufIdx++
			if c.keyFilter != nil {
				if _, ok := c.keyFilter[e.Key]; !ok {
					continue
				}
			}
			c.key = e.Key
			c.val = e.Value
			return true
		}
		return false
	}

	if c.done || c.err != nil {
		return false
	}

	for {
		if c.leaf == nil {
			c.done = true
			return false
		}

		if c.slot < 0 || c.slot >= len(c.leaf.Values) {
			if !c.advanceLeaf() {
				return false
			}
			continue
		}

		if c.bucketIdx >= len(c.leaf.Buckets[c.slot]) {
			c.slot += c.direction
			c.bucketIdx = 0
			continue
		}

		val := c.leaf.Values[c.slot]

		if c.hasHighest {
			cmp := endCmp(c.cmp, c.endKind)
			if cmp(val, c.highest) > 0 {
				c.done = true
				return false
			}
		}

		if c.hasDriver {
			verify := c.verifiers[c.driverTag]
			if verify != nil && !verify(c.cmp, val, c.driverPred.Arg) {
				if c.earlyTerm {
					c.done = true
					return false
				}
				c.slot += c.direction
				c.bucketIdx = 0
				continue
			}
		}

		if !c.passesPostFilter(val) {
			c.slot += c.direction
			c.bucketIdx = 0
			continue
		}

		key := c.leaf.Buckets[c.slot][c.bucketIdx]
		c.bucketIdx++

		if c.keyFilter != nil {
			if _, ok := c.keyFilter[key]; !ok {
				continue
			}
		}

		c.key = key
		c.val = val
		return true
	}
}

func (c *Cursor[K, V]) passesPostFilter(val V) bool {
	for _, pred := range c.postFilter {
		verify := c.verifiers[pred.Tag]
		if verify == nil {
			continue
		}
		if !verify(c.cmp, val, pred.Arg) {
			return false
		}
	}
	return true
}

// advanceLeaf moves to the next (or previous) leaf, consuming the
// outstanding prefetch and launching the next one.
func (c *Cursor[K, V]) advanceLeaf() bool {
	result := <-c.pending
	if result.err != nil {
		c.err = result.err
		return false
	}
	if result.node == nil {
		c.done = true
		return false
	}

	c.tree.metrics.ScannedLeaf()
	c.leaf = result.node
	if c.direction < 0 {
		c.slot = len(c.leaf.Values) - 1
	} else {
		c.slot = 0
	}
	c.bucketIdx = 0

	c.prefetch(neighborID(c.leaf, c.direction))
	return true
}

// Pair returns the key and value the cursor currently sits on. Only valid
// after a call to Next that returned true.
func (c *Cursor[K, V]) Pair() (K, V) {
	return c.key, c.val
}

// Err returns the first error encountered while scanning, if any.
func (c *Cursor[K, V]) Err() error {
	return c.err
}

// Close releases the cursor. It is safe to abandon a cursor without
// calling Close; the outstanding read-ahead fetch (if any) simply
// completes and is discarded.
func (c *Cursor[K, V]) Close() error {
	c.done = true
	return nil
}
