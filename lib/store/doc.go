// Package store provides the interface for key-value storage used by the rKV
// server and client.
//
// The package focuses on:
//   - A unified interface (IStore) for key-value operations across different backends
//   - Unified error handling with return codes
//
// Key Components:
//
//   - IStore Interface: The core abstraction the server executes GET and SET
//     commands against. The store is created once at server start and shared
//     by all connection handlers, so every implementation must be safe for
//     concurrent use.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages.
//
// Implementations:
//
//	- Locked Store (lstore): A single map guarded by a single mutex. Every
//	  operation holds the lock for exactly one map access and never performs
//	  I/O while holding it.
//	  Available in the "github.com/ValentinKolb/rKV/lib/store/lstore" package.
//
//	- Sharded Store (sstore): Partitions the keys by hash into N independently
//	  locked maps. The external contract is the same as for lstore, only lock
//	  contention between unrelated keys is reduced.
//	  Available in the "github.com/ValentinKolb/rKV/lib/store/sstore" package.
//
//	- RPC Store: The client in "github.com/ValentinKolb/rKV/rpc/client" implements
//	  IStore on top of the wire protocol.
package store
