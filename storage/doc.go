// Package storage defines the persistence contract the B+ tree engine
// requires of a backend, and ships two concrete backends: an in-memory map
// and a go.etcd.io/bbolt-backed store. The engine never touches a backend
// directly — every call is routed through the mvcc package's write-buffered
// overlay — so a Strategy implementation only needs to persist whatever
// node or head state it is handed.
package storage
