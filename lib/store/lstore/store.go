package lstore

import (
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/lib/store/util"
	"sync"
)

type storeImpl struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewLocalStore creates a new local store instance.
// All keys live in one map that is guarded by a single mutex.
func NewLocalStore() store.IStore {
	store.Logger.Debugf("Created local store")
	return &storeImpl{
		data: make(map[string][]byte),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	// copy outside the lock, the map only ever holds private slices
	v := util.CopyBytes(value)

	s.mu.Lock()
	s.data[key] = v
	s.mu.Unlock()
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	v, ok := s.data[key]
	s.mu.Unlock()

	if !ok {
		return nil, false, nil
	}
	// stored slices are never mutated, so copying after unlock is safe
	return util.CopyBytes(v), true, nil
}

func (s *storeImpl) GetInfo() (store.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := 0
	for k, v := range s.data {
		size += len(k) + len(v)
	}

	return store.Info{
		Implementation: store.ImplLocked,
		Keys:           len(s.data),
		SizeBytes:      size,
		Shards:         1,
	}, nil
}
