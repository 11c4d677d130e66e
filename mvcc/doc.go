// Package mvcc implements the write-buffered overlay that sits between
// the B+ tree engine and a storage.Strategy: reads are served from the
// overlay's own buffers first, writes are accumulated in memory, and
// nothing reaches the backing strategy until Commit.
package mvcc
