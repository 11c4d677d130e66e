// Package bptree implements a serializable, transactional B+ tree index:
// an embeddable ordered-index engine parameterized by a user-supplied
// storage.Strategy and ordering.Comparator. It supports range,
// equality, set-membership, negation, and SQL-like pattern queries, plus
// transactional insert/delete with commit/rollback over a persistable
// node store.
//
// Structurally this follows KilimcininKorOglu/oba's internal/storage/btree
// package (a root-to-leaf path threaded through dedicated split/merge/
// borrow helpers, one BPlusTree per index) generalized from byte-key pages
// to generic (K,V) pairs addressed through an MVCC overlay instead of a
// page manager.
package bptree

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/KilimcininKorOglu/bptree/cache"
	"github.com/KilimcininKorOglu/bptree/internal/obslog"
	"github.com/KilimcininKorOglu/bptree/mvcc"
	"github.com/KilimcininKorOglu/bptree/ordering"
	"github.com/KilimcininKorOglu/bptree/query"
	"github.com/KilimcininKorOglu/bptree/storage"
)

// Tree is a B+ tree index over external keys K and values V, persisted
// through a storage.Strategy and ordered by an ordering.Comparator[V].
// Mutations are buffered in an mvcc.Overlay until Commit; reads go through
// a bounded node cache first. There is no parallelism within a single
// Tree: all in-memory structures are assumed touched by exactly one
// logical executor at a time (spec.md §5), enforced by mu.
type Tree[K comparable, V any] struct {
	mu sync.Mutex

	order   int
	cmp     ordering.Comparator[V]
	overlay *mvcc.Overlay[K, V]
	cache   *cache.LRU[storage.NodeID, *storage.Node[K, V]]
	pattern *query.PatternCache

	verifiers map[query.Tag]func(ordering.Comparator[V], V, any) bool

	root        storage.NodeID
	headData    any
	initialized bool

	log     zerolog.Logger
	metrics MetricsSink
}

// MetricsSink receives optional instrumentation events. A nil sink (the
// default) is a silent no-op; see internal/obsmetrics.Collector for a
// Prometheus-backed implementation.
type MetricsSink interface {
	CacheHit()
	CacheMiss()
	Committed(created, updated, deleted int)
	RolledBack()
	ScannedLeaf()
}

type noopMetrics struct{}

func (noopMetrics) CacheHit()                                {}
func (noopMetrics) CacheMiss()                                {}
func (noopMetrics) Committed(created, updated, deleted int)   {}
func (noopMetrics) RolledBack()                                {}
func (noopMetrics) ScannedLeaf()                               {}

// New creates a Tree over the given backing strategy and comparator. Init
// must be called before any other method.
func New[K comparable, V any](backing storage.Strategy[K, V], cmp ordering.Comparator[V], order int, opts Options) *Tree[K, V] {
	opts.Validate()

	return &Tree[K, V]{
		order:     order,
		cmp:       cmp,
		overlay:   mvcc.New[K, V](backing),
		cache:     cache.New[storage.NodeID, *storage.Node[K, V]](opts.Capacity),
		pattern:   query.NewPatternCache(opts.Capacity),
		verifiers: query.VerifierTable[V](),
		log:       obslog.Component("bptree"),
		metrics:   noopMetrics{},
	}
}

// Instrument attaches a MetricsSink to the tree (see internal/obsmetrics).
func (t *Tree[K, V]) Instrument(sink MetricsSink) {
	if sink == nil {
		sink = noopMetrics{}
	}
	t.metrics = sink
}

// Init reads the persisted head record, or initializes a fresh empty tree
// (a single empty leaf root) if none exists yet. It validates order >= 3
// and must be called exactly once before any other Tree method.
func (t *Tree[K, V]) Init(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return ErrAlreadyInit
	}

	head, err := t.overlay.ReadHead(ctx)
	if err != nil && err != storage.ErrNotFound {
		return fmt.Errorf("bptree: read head: %w", err)
	}

	if err == storage.ErrNotFound {
		if t.order < 3 {
			return ErrInvalidOrder
		}

		rootID, err := t.overlay.NewID(ctx, true)
		if err != nil {
			return fmt.Errorf("bptree: allocate root: %w", err)
		}
		root := storage.NewLeaf[K, V](rootID)

		t.overlay.Create(rootID, root)
		t.overlay.SetHead(&storage.Head{Root: rootID, Order: t.order})

		if _, err := t.overlay.Commit(ctx, "init"); err != nil {
			return fmt.Errorf("bptree: commit initial head: %w", err)
		}

		t.cache.Put(rootID, root)
		t.root = rootID
		t.initialized = true
		t.log.Debug().Int("order", t.order).Msg("initialized empty tree")
		return nil
	}

	if head.Order < 3 {
		return ErrInvalidOrder
	}

	t.order = head.Order
	t.root = head.Root
	t.headData = head.Data
	t.initialized = true
	t.log.Debug().Str("root", string(t.root)).Int("order", t.order).Msg("loaded existing tree")
	return nil
}

// Order returns the tree's fanout parameter.
func (t *Tree[K, V]) Order() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order
}

// Root returns the id of the current root node.
func (t *Tree[K, V]) Root() storage.NodeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// SetHeadData persists an arbitrary user payload alongside the head
// record. Not visible to other readers until Commit.
func (t *Tree[K, V]) SetHeadData(data any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrMissingHead
	}

	t.headData = data
	t.overlay.SetHead(&storage.Head{Root: t.root, Order: t.order, Data: data})
	return nil
}

// GetHeadData returns the head's user payload.
func (t *Tree[K, V]) GetHeadData() (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return nil, ErrMissingHead
	}
	return t.headData, nil
}

// Commit flushes all buffered creates/updates/deletes to the backing
// storage strategy (see mvcc.Overlay.Commit: the writes are applied one at
// a time, not as one atomic batch).
func (t *Tree[K, V]) Commit(ctx context.Context, label string) (*mvcc.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result, err := t.overlay.Commit(ctx, label)
	if err != nil {
		return nil, err
	}
	t.metrics.Committed(len(result.Created), len(result.Updated), len(result.Deleted))
	t.log.Debug().
		Int("created", len(result.Created)).
		Int("updated", len(result.Updated)).
		Int("deleted", len(result.Deleted)).
		Str("label", label).
		Msg("commit")
	return result, nil
}

// Rollback discards all buffered mutations and the node cache entries
// they produced.
func (t *Tree[K, V]) Rollback() *mvcc.Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := t.overlay.Rollback()
	t.cache.Clear()
	if head, err := t.overlay.ReadHead(context.Background()); err == nil {
		t.root = head.Root
		t.headData = head.Data
	}
	t.metrics.RolledBack()
	t.log.Debug().Msg("rollback")
	return result
}

// GetResultEntries inspects the pending transaction buffers without
// committing them.
func (t *Tree[K, V]) GetResultEntries() (created, updated, deleted []storage.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overlay.PendingEntries()
}

// Clear drops the node cache and the pattern cache.
func (t *Tree[K, V]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.Clear()
	t.pattern = query.NewPatternCache(t.pattern.Capacity())
}

// ForceUpdate evicts and re-reads a single node (id != ""), or the whole
// cache (id == ""), to resynchronize against a backend an external writer
// has touched.
func (t *Tree[K, V]) ForceUpdate(ctx context.Context, id storage.NodeID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == storage.NoID {
		t.cache.Clear()
		return nil
	}

	t.cache.Evict(id)
	_, err := t.readNodeLocked(ctx, id)
	return err
}

// readNodeLocked reads a node through the cache, then the overlay. Caller
// must hold t.mu.
func (t *Tree[K, V]) readNodeLocked(ctx context.Context, id storage.NodeID) (*storage.Node[K, V], error) {
	if id == storage.NoID {
		return nil, nil
	}

	if n, ok := t.cache.Get(id); ok {
		t.metrics.CacheHit()
		return n, nil
	}
	t.metrics.CacheMiss()

	n, err := t.overlay.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("bptree: read node %s: %w", id, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: node %s not found", ErrStructural, id)
	}

	t.cache.Put(id, n)
	return n, nil
}

// fetchNode reads a node by id, acquiring t.mu itself. Used by the query
// cursor's background read-ahead goroutine, which runs concurrently with
// the caller evaluating predicates over the previous leaf rather than
// under the caller's own lock.
func (t *Tree[K, V]) fetchNode(ctx context.Context, id storage.NodeID) (*storage.Node[K, V], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readNodeLocked(ctx, id)
}

func (t *Tree[K, V]) createNodeLocked(n *storage.Node[K, V]) {
	t.overlay.Create(n.ID, n)
	t.cache.Put(n.ID, n)
}

func (t *Tree[K, V]) writeNodeLocked(n *storage.Node[K, V]) {
	t.overlay.Write(n.ID, n)
	t.cache.Put(n.ID, n)
}

func (t *Tree[K, V]) deleteNodeLocked(id storage.NodeID) {
	t.overlay.Delete(id)
	t.cache.Evict(id)
}

func (t *Tree[K, V]) allocateNodeLocked(ctx context.Context, leaf bool) (*storage.Node[K, V], error) {
	id, err := t.overlay.NewID(ctx, leaf)
	if err != nil {
		return nil, fmt.Errorf("bptree: allocate node: %w", err)
	}
	if leaf {
		return storage.NewLeaf[K, V](id), nil
	}
	return storage.NewInternal[K, V](id), nil
}

func (t *Tree[K, V]) setRootLocked(id storage.NodeID) {
	t.root = id
	t.overlay.SetHead(&storage.Head{Root: id, Order: t.order, Data: t.headData})
}

// TreeStats reports aggregate shape information, generalizing the
// teacher's BPlusTree.Stats() leaf-chain walk.
type TreeStats struct {
	Height int
	// InternalNodes counts the internal nodes on the leftmost root-to-leaf
	// path only (Height-1 for a well-formed tree), not every internal node.
	InternalNodes int
	LeafNodes     int
	TotalSlots    int
	TotalKeys     int
}

// Stats walks the tree to report its current shape. Useful for verifying
// the occupancy invariants in spec.md §8 from tests.
func (t *Tree[K, V]) Stats(ctx context.Context) (TreeStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var stats TreeStats
	if t.root == storage.NoID {
		return stats, nil
	}

	node, err := t.readNodeLocked(ctx, t.root)
	if err != nil {
		return stats, err
	}

	height := 1
	for !node.Leaf {
		height++
		if len(node.Children) == 0 {
			break
		}
		stats.InternalNodes++
		node, err = t.readNodeLocked(ctx, node.Children[0])
		if err != nil {
			return stats, err
		}
	}
	stats.Height = height

	leaf, err := t.findLeftmostLeafLocked(ctx)
	if err != nil {
		return stats, err
	}
	for leaf != nil {
		stats.LeafNodes++
		stats.TotalSlots += len(leaf.Values)
		for _, bucket := range leaf.Buckets {
			stats.TotalKeys += len(bucket)
		}
		if leaf.Next == storage.NoID {
			break
		}
		leaf, err = t.readNodeLocked(ctx, leaf.Next)
		if err != nil {
			return stats, err
		}
	}

	return stats, nil
}
