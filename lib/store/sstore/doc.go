// Package sstore implements a sharded in-memory key-value store based on the
// store.IStore interface.
//
// Keys are hashed with xxh3 (seeded per store instance) and mapped to one of N
// shards. Each shard is a plain Go map with its own sync.Mutex, so operations on
// keys in different shards never contend. The observable behavior is the same
// as lstore: every operation is atomic, values are copied in and out.
//
// GetInfo locks the shards one after another and is therefore not a consistent
// snapshot across shards. It additionally reports how evenly the keys are
// spread (see util.DistributionStats).
package sstore
