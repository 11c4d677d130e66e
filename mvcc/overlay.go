package mvcc

import (
	"context"
	"fmt"
	"sync"

	"github.com/KilimcininKorOglu/bptree/storage"
)

// Result describes the effect of a Commit or Rollback: the ids that were
// created, updated, and deleted. The ids within each list are in no
// particular order.
type Result struct {
	Label   string
	Created []storage.NodeID
	Updated []storage.NodeID
	Deleted []storage.NodeID
}

// Overlay is a single transaction's write buffer over a storage.Strategy.
// It maintains three in-memory sets — created, updated, deleted — each
// keyed by node id and carrying the latest proposed node state, per
// spec.md §4.3.
//
// A nested Overlay (created via NewNested) chains to a parent: a
// successful Commit moves the child's buffers into the parent overlay,
// where they become visible to the outer scope; nothing reaches the
// backing strategy until the parent itself is committed.
type Overlay[K comparable, V any] struct {
	mu sync.Mutex

	backing storage.Strategy[K, V]
	parent  *Overlay[K, V]

	created map[storage.NodeID]*storage.Node[K, V]
	updated map[storage.NodeID]*storage.Node[K, V]
	deleted map[storage.NodeID]struct{}

	headSet *storage.Head
}

// New creates a root Overlay directly over a backing strategy.
func New[K comparable, V any](backing storage.Strategy[K, V]) *Overlay[K, V] {
	return &Overlay[K, V]{
		backing: backing,
		created: make(map[storage.NodeID]*storage.Node[K, V]),
		updated: make(map[storage.NodeID]*storage.Node[K, V]),
		deleted: make(map[storage.NodeID]struct{}),
	}
}

// NewNested creates an Overlay whose Commit flushes into parent's buffers
// instead of the backing strategy directly, for embedders that want
// nested transaction scopes. Reads fall through to parent when not
// present in this overlay's own buffers.
func NewNested[K comparable, V any](parent *Overlay[K, V]) *Overlay[K, V] {
	return &Overlay[K, V]{
		backing: parent.backing,
		parent:  parent,
		created: make(map[storage.NodeID]*storage.Node[K, V]),
		updated: make(map[storage.NodeID]*storage.Node[K, V]),
		deleted: make(map[storage.NodeID]struct{}),
	}
}

// Root returns the outermost ancestor overlay, or the overlay itself if it
// has no parent.
func (o *Overlay[K, V]) Root() *Overlay[K, V] {
	for o.parent != nil {
		o = o.parent
	}
	return o
}

// Read serves the node from the write buffers if present, else delegates
// to the parent overlay (if nested) or the backing strategy.
func (o *Overlay[K, V]) Read(ctx context.Context, id storage.NodeID) (*storage.Node[K, V], error) {
	o.mu.Lock()
	if _, gone := o.deleted[id]; gone {
		o.mu.Unlock()
		return nil, nil
	}
	if n, ok := o.updated[id]; ok {
		o.mu.Unlock()
		return n.Clone(), nil
	}
	if n, ok := o.created[id]; ok {
		o.mu.Unlock()
		return n.Clone(), nil
	}
	o.mu.Unlock()

	if o.parent != nil {
		return o.parent.Read(ctx, id)
	}
	return o.backing.Read(ctx, id)
}

// NewID delegates straight to the backing strategy: id allocation is not
// buffered, since an id only becomes meaningful once a node is created
// under it within the same transaction.
func (o *Overlay[K, V]) NewID(ctx context.Context, leaf bool) (storage.NodeID, error) {
	return o.backing.NewID(ctx, leaf)
}

// AutoIncrement delegates straight to the backing strategy.
func (o *Overlay[K, V]) AutoIncrement(ctx context.Context, counter string, step int64) (int64, error) {
	return o.backing.AutoIncrement(ctx, counter, step)
}

// Exists honors the buffered view: a created-then-not-deleted id exists
// even before commit, and a deleted id does not exist even if the backing
// strategy still has it.
func (o *Overlay[K, V]) Exists(ctx context.Context, id storage.NodeID) (bool, error) {
	n, err := o.Read(ctx, id)
	if err != nil {
		return false, err
	}
	return n != nil, nil
}

// Create buffers a brand-new node.
func (o *Overlay[K, V]) Create(id storage.NodeID, n *storage.Node[K, V]) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.deleted, id)
	o.created[id] = n.Clone()
}

// Write buffers a modification to an existing node. If the node was
// created within this same transaction, the created entry is updated in
// place rather than promoted to the updated set (it is still, from the
// backing strategy's perspective, a create).
func (o *Overlay[K, V]) Write(id storage.NodeID, n *storage.Node[K, V]) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.deleted, id)
	if _, isNew := o.created[id]; isNew {
		o.created[id] = n.Clone()
		return
	}
	o.updated[id] = n.Clone()
}

// Delete buffers a deletion. Deleting an as-yet-uncommitted created entry
// cancels it outright rather than leaving a tombstone for a node the
// backing strategy has never seen.
func (o *Overlay[K, V]) Delete(id storage.NodeID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, isNew := o.created[id]; isNew {
		delete(o.created, id)
		return
	}
	delete(o.updated, id)
	o.deleted[id] = struct{}{}
}

// ReadHead serves the buffered head if SetHead has been called this
// transaction, else falls through to the parent overlay or backing
// strategy.
func (o *Overlay[K, V]) ReadHead(ctx context.Context) (*storage.Head, error) {
	o.mu.Lock()
	if o.headSet != nil {
		h := *o.headSet
		o.mu.Unlock()
		return &h, nil
	}
	o.mu.Unlock()

	if o.parent != nil {
		return o.parent.ReadHead(ctx)
	}
	return o.backing.ReadHead(ctx)
}

// SetHead buffers a new head record.
func (o *Overlay[K, V]) SetHead(h *storage.Head) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cp := *h
	o.headSet = &cp
}

// PendingEntries exposes the current write buffers for inspection
// (spec.md §6's getResultEntries), without committing them.
func (o *Overlay[K, V]) PendingEntries() (created, updated, deleted []storage.NodeID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id := range o.created {
		created = append(created, id)
	}
	for id := range o.updated {
		updated = append(updated, id)
	}
	for id := range o.deleted {
		deleted = append(deleted, id)
	}
	return created, updated, deleted
}

// Commit flushes all three buffers to the backing strategy (or, for a
// nested overlay, into the parent overlay's own buffers — the parent is
// left uncommitted until its own Commit is called). The backing writes
// are issued one at a time, not as one atomic batch: on a backend failure
// the writes already issued stay in the backing strategy, while the
// transaction's buffers are left untouched so the caller may retry or
// Rollback.
func (o *Overlay[K, V]) Commit(ctx context.Context, label string) (*Result, error) {
	o.mu.Lock()
	created := make(map[storage.NodeID]*storage.Node[K, V], len(o.created))
	for id, n := range o.created {
		created[id] = n
	}
	updated := make(map[storage.NodeID]*storage.Node[K, V], len(o.updated))
	for id, n := range o.updated {
		updated[id] = n
	}
	deleted := make(map[storage.NodeID]struct{}, len(o.deleted))
	for id := range o.deleted {
		deleted[id] = struct{}{}
	}
	head := o.headSet
	o.mu.Unlock()

	if o.parent != nil {
		for id, n := range created {
			o.parent.Create(id, n)
		}
		for id, n := range updated {
			o.parent.Write(id, n)
		}
		for id := range deleted {
			o.parent.Delete(id)
		}
		if head != nil {
			o.parent.SetHead(head)
		}
	} else {
		if err := o.flush(ctx, created, updated, deleted, head); err != nil {
			return nil, err
		}
	}

	o.mu.Lock()
	o.created = make(map[storage.NodeID]*storage.Node[K, V])
	o.updated = make(map[storage.NodeID]*storage.Node[K, V])
	o.deleted = make(map[storage.NodeID]struct{})
	o.headSet = nil
	o.mu.Unlock()

	result := &Result{Label: label}
	for id := range created {
		result.Created = append(result.Created, id)
	}
	for id := range updated {
		result.Updated = append(result.Updated, id)
	}
	for id := range deleted {
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}

func (o *Overlay[K, V]) flush(
	ctx context.Context,
	created, updated map[storage.NodeID]*storage.Node[K, V],
	deleted map[storage.NodeID]struct{},
	head *storage.Head,
) error {
	for id, n := range created {
		if err := o.backing.Write(ctx, id, n); err != nil {
			return fmt.Errorf("mvcc: commit create %s: %w", id, err)
		}
	}
	for id, n := range updated {
		if err := o.backing.Write(ctx, id, n); err != nil {
			return fmt.Errorf("mvcc: commit update %s: %w", id, err)
		}
	}
	for id := range deleted {
		if err := o.backing.Delete(ctx, id); err != nil {
			return fmt.Errorf("mvcc: commit delete %s: %w", id, err)
		}
	}
	if head != nil {
		if err := o.backing.WriteHead(ctx, head); err != nil {
			return fmt.Errorf("mvcc: commit head: %w", err)
		}
	}
	return nil
}

// Rollback discards all buffers and returns empty effect lists.
func (o *Overlay[K, V]) Rollback() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.created = make(map[storage.NodeID]*storage.Node[K, V])
	o.updated = make(map[storage.NodeID]*storage.Node[K, V])
	o.deleted = make(map[storage.NodeID]struct{})
	o.headSet = nil

	return &Result{}
}
