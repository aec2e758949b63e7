// Package lstore implements the default in-memory key-value store of rKV based
// on the store.IStore interface. Data is stored entirely in memory and is not
// persisted between process restarts.
//
// Implementation Details:
//
//   - Single Lock: All keys live in one Go map guarded by one sync.Mutex. Every
//     operation acquires the lock for exactly one map access. No I/O happens
//     while the lock is held.
//
//   - Value Ownership: Set stores a private copy of the value and Get returns a
//     fresh copy. Stored slices are never mutated after insertion, which is why
//     Get can copy the value after the lock has been released.
//
// Thread Safety:
//
//	All operations are safe for concurrent use. The store is created once by
//	the server and shared by all connection handlers.
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//	_ = s.Set("hello", []byte("world"))
//	value, exists, err := s.Get("hello")
//
// For workloads with many connections writing unrelated keys, the sstore
// package provides the same contract with per-shard locks.
package lstore
