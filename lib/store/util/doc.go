// Package util provides helpers shared by the store implementations:
// seed generation for hash based sharding, value copying and statistics about
// the key distribution over shards.
package util
