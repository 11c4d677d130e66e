package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Strategy backed by a map guarded by a
// sync.RWMutex. It never persists anything beyond the process lifetime;
// useful for tests and for embedders that only need a transient index.
//
// Grounded in johnjansen-torua's internal/storage.Store: copy-out reads,
// ErrNotFound for a head that was never written ((nil, nil) for a missing
// node), no locks held across I/O (there is none here).
type Memory[K comparable, V any] struct {
	mu       sync.RWMutex
	nodes    map[NodeID]*Node[K, V]
	head     *Head
	counters map[string]int64
}

// NewMemory creates an empty Memory strategy.
func NewMemory[K comparable, V any]() *Memory[K, V] {
	return &Memory[K, V]{
		nodes:    make(map[NodeID]*Node[K, V]),
		counters: make(map[string]int64),
	}
}

func (m *Memory[K, V]) Read(_ context.Context, id NodeID) (*Node[K, V], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[id]
	if !ok {
		return nil, nil
	}
	return n.Clone(), nil
}

func (m *Memory[K, V]) Write(_ context.Context, id NodeID, n *Node[K, V]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes[id] = n.Clone()
	return nil
}

func (m *Memory[K, V]) Delete(_ context.Context, id NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.nodes, id)
	return nil
}

func (m *Memory[K, V]) NewID(_ context.Context, _ bool) (NodeID, error) {
	return NodeID(uuid.NewString()), nil
}

func (m *Memory[K, V]) ReadHead(_ context.Context) (*Head, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.head == nil {
		return nil, ErrNotFound
	}
	h := *m.head
	return &h, nil
}

func (m *Memory[K, V]) WriteHead(_ context.Context, h *Head) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *h
	m.head = &cp
	return nil
}

func (m *Memory[K, V]) AutoIncrement(_ context.Context, counter string, step int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[counter] += step
	return m.counters[counter], nil
}
