package sstore

import (
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/lib/store/util"
	"github.com/zeebo/xxh3"
	"runtime"
	"sync"
)

// shard is one independently locked partition of the key space
type shard struct {
	mu   sync.Mutex
	data map[string][]byte
}

type storeImpl struct {
	seed   uint64
	shards []*shard
}

// Options configures the sharded store
type Options struct {
	NumShards int // Number of shards (0 = number of CPUs)
}

// DefaultOptions returns the default sharded store options
func DefaultOptions() *Options {
	return &Options{
		NumShards: runtime.NumCPU(),
	}
}

// NewShardedStore creates a new store that partitions the keys by hash into
// independently locked shards. If opts is nil, DefaultOptions is used.
func NewShardedStore(opts *Options) store.IStore {
	if opts == nil {
		opts = DefaultOptions()
	}
	n := opts.NumShards
	if n <= 0 {
		n = runtime.NumCPU()
	}

	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{data: make(map[string][]byte)}
	}

	store.Logger.Debugf("Created sharded store with %d shards", n)

	return &storeImpl{
		seed:   util.GenerateSeed(),
		shards: shards,
	}
}

// getShard returns the shard responsible for the key
func (s *storeImpl) getShard(key string) *shard {
	h := xxh3.HashStringSeed(key, s.seed)
	// use the higher bits, the lower ones also select the map bucket
	return s.shards[(h>>7)%uint64(len(s.shards))]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	v := util.CopyBytes(value)
	sh := s.getShard(key)

	sh.mu.Lock()
	sh.data[key] = v
	sh.mu.Unlock()
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	sh := s.getShard(key)

	sh.mu.Lock()
	v, ok := sh.data[key]
	sh.mu.Unlock()

	if !ok {
		return nil, false, nil
	}
	return util.CopyBytes(v), true, nil
}

func (s *storeImpl) GetInfo() (store.Info, error) {
	info := store.Info{
		Implementation: store.ImplSharded,
		Shards:         len(s.shards),
	}

	shardSizes := make([]float64, len(s.shards))
	for i, sh := range s.shards {
		sh.mu.Lock()
		shardSizes[i] = float64(len(sh.data))
		info.Keys += len(sh.data)
		for k, v := range sh.data {
			info.SizeBytes += len(k) + len(v)
		}
		sh.mu.Unlock()
	}

	dist := util.NewDistributionStats(shardSizes)
	info.Distribution = &dist
	return info, nil
}
