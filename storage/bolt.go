package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketNodes    = []byte("nodes")
	bucketHead     = []byte("head")
	bucketCounters = []byte("counters")

	headKey = []byte("head")
)

// Bolt is a go.etcd.io/bbolt-backed Strategy: one bucket for nodes (keyed
// by NodeID), one for the singleton head record, one for auto-increment
// counters. Node and head values are JSON-encoded.
//
// Grounded in cuemby-warren/pkg/storage/boltdb.go's bucket-per-concern,
// db.Update/db.View shape.
type Bolt[K comparable, V any] struct {
	db *bolt.DB
}

// OpenBolt opens (creating if absent) a bbolt database at path and
// prepares its buckets.
func OpenBolt[K comparable, V any](path string) (*Bolt[K, V], error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketNodes, bucketHead, bucketCounters} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("storage: create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt[K, V]{db: db}, nil
}

// Close closes the underlying database.
func (b *Bolt[K, V]) Close() error { return b.db.Close() }

func (b *Bolt[K, V]) Read(_ context.Context, id NodeID) (*Node[K, V], error) {
	var n *Node[K, V]
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNodes).Get([]byte(id))
		if data == nil {
			return nil
		}
		n = &Node[K, V]{}
		return json.Unmarshal(data, n)
	})
	return n, err
}

func (b *Bolt[K, V]) Write(_ context.Context, id NodeID, n *Node[K, V]) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("storage: encode node %s: %w", id, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).Put([]byte(id), data)
	})
}

func (b *Bolt[K, V]) Delete(_ context.Context, id NodeID) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).Delete([]byte(id))
	})
}

func (b *Bolt[K, V]) NewID(_ context.Context, _ bool) (NodeID, error) {
	return NodeID(uuid.NewString()), nil
}

func (b *Bolt[K, V]) ReadHead(_ context.Context) (*Head, error) {
	var h *Head
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketHead).Get(headKey)
		if data == nil {
			return nil
		}
		h = &Head{}
		return json.Unmarshal(data, h)
	})
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrNotFound
	}
	return h, nil
}

func (b *Bolt[K, V]) WriteHead(_ context.Context, h *Head) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("storage: encode head: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHead).Put(headKey, data)
	})
}

func (b *Bolt[K, V]) AutoIncrement(_ context.Context, counter string, step int64) (int64, error) {
	var next int64
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketCounters)
		cur := bkt.Get([]byte(counter))
		var v int64
		if cur != nil {
			if err := json.Unmarshal(cur, &v); err != nil {
				return err
			}
		}
		v += step
		next = v
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(counter), data)
	})
	return next, err
}
