package sstore

import (
	"fmt"
	"testing"

	"github.com/ValentinKolb/rKV/lib/store"
	storetesting "github.com/ValentinKolb/rKV/lib/store/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedStore(t *testing.T) {
	for _, n := range []int{1, 4, 64} {
		storetesting.RunStoreTests(t, fmt.Sprintf("ShardedStore(%d)", n), func() store.IStore {
			return NewShardedStore(&Options{NumShards: n})
		})
	}
}

func BenchmarkShardedStore(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "ShardedStore", func() store.IStore {
		return NewShardedStore(nil)
	})
}

func TestShardedStoreDefaults(t *testing.T) {
	s := NewShardedStore(&Options{NumShards: 0})
	info, err := s.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().NumShards, info.Shards)
}

func TestShardedStoreDistribution(t *testing.T) {
	s := NewShardedStore(&Options{NumShards: 8})
	for i := 0; i < 10000; i++ {
		require.NoError(t, s.Set(fmt.Sprintf("key-%d", i), []byte("v")))
	}

	info, err := s.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, store.ImplSharded, info.Implementation)
	assert.Equal(t, 10000, info.Keys)
	assert.Equal(t, 8, info.Shards)
	require.NotNil(t, info.Distribution)
	// xxh3 spreads sequential keys evenly
	assert.Greater(t, info.Distribution.DistributionQuality, 0.8)
	assert.Greater(t, info.Distribution.Min, 0.0)
}

func TestShardSelectionIsStable(t *testing.T) {
	s := NewShardedStore(&Options{NumShards: 16}).(*storeImpl)
	assert.Same(t, s.getShard("hello"), s.getShard("hello"))
}
