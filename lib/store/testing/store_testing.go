package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/rKV/lib/store"
)

// StoreFactory is a function that creates a new instance of a IStore implementation
type StoreFactory func() store.IStore

// RunStoreTests runs a comprehensive test suite for a IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Missing", func(t *testing.T) {
			testMissing(t, factory())
		})

		t.Run("ValueIsolation", func(t *testing.T) {
			testValueIsolation(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})

		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory())
		})

		t.Run("ConcurrentSameKey", func(t *testing.T) {
			testConcurrentSameKey(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustGet(t *testing.T, s store.IStore, key string) ([]byte, bool) {
	t.Helper()
	value, exists, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) returned error: %v", key, err)
	}
	return value, exists
}

func mustSet(t *testing.T, s store.IStore, key string, value []byte) {
	t.Helper()
	if err := s.Set(key, value); err != nil {
		t.Fatalf("Set(%q) returned error: %v", key, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s store.IStore) {
	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	mustSet(t, s, testKey, testValue1)

	result, exists := mustGet(t, s, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// last write wins
	mustSet(t, s, testKey, testValue2)

	result, exists = mustGet(t, s, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}
}

func testMissing(t *testing.T, s store.IStore) {
	value, exists := mustGet(t, s, "nonexistent-key")
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}
	if value != nil {
		t.Errorf("Expected nil value for nonexistent key, got %q", value)
	}
}

func testValueIsolation(t *testing.T, s store.IStore) {
	input := []byte("original")
	mustSet(t, s, "key", input)

	// mutating the input after Set must not change the stored value
	input[0] = 'X'
	result, _ := mustGet(t, s, "key")
	if !bytes.Equal(result, []byte("original")) {
		t.Errorf("Set should store a copy, got %s", result)
	}

	// mutating a returned value must not change the stored value
	result[0] = 'Y'
	again, _ := mustGet(t, s, "key")
	if !bytes.Equal(again, []byte("original")) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testEdgeCases(t *testing.T, s store.IStore) {
	// empty key
	mustSet(t, s, "", []byte("empty-key"))
	result, exists := mustGet(t, s, "")
	if !exists || !bytes.Equal(result, []byte("empty-key")) {
		t.Errorf("Expected empty key to be stored, got %q (exists=%v)", result, exists)
	}

	// empty value is a value, not an absence
	mustSet(t, s, "empty-value", []byte{})
	result, exists = mustGet(t, s, "empty-value")
	if !exists {
		t.Errorf("Expected key with empty value to exist")
	}
	if len(result) != 0 {
		t.Errorf("Expected empty value, got %q", result)
	}

	// binary data including CRLF and NUL
	binary := []byte{0, '\r', '\n', 0xff, 'a'}
	mustSet(t, s, "binary", binary)
	result, _ = mustGet(t, s, "binary")
	if !bytes.Equal(result, binary) {
		t.Errorf("Expected binary value %v, got %v", binary, result)
	}

	// large value
	large := bytes.Repeat([]byte("x"), 1<<20)
	mustSet(t, s, "large", large)
	result, _ = mustGet(t, s, "large")
	if !bytes.Equal(result, large) {
		t.Errorf("Large value was not stored correctly")
	}
}

func testInfo(t *testing.T, s store.IStore) {
	for i := 0; i < 100; i++ {
		mustSet(t, s, fmt.Sprintf("key-%d", i), []byte("v"))
	}
	// overwrite does not add a key
	mustSet(t, s, "key-0", []byte("vv"))

	info, err := s.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo returned error: %v", err)
	}
	if info.Keys != 100 {
		t.Errorf("Expected 100 keys, got %d", info.Keys)
	}
	if info.Shards < 1 {
		t.Errorf("Expected at least one shard, got %d", info.Shards)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected positive size, got %d", info.SizeBytes)
	}
}

func testConcurrentWriters(t *testing.T, s store.IStore) {
	const writers = 32
	const keysPerWriter = 200

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < keysPerWriter; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				if err := s.Set(key, []byte(key)); err != nil {
					t.Errorf("Set(%q) returned error: %v", key, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	// every write of every writer must be visible
	for w := 0; w < writers; w++ {
		for i := 0; i < keysPerWriter; i++ {
			key := fmt.Sprintf("w%d-k%d", w, i)
			result, exists := mustGet(t, s, key)
			if !exists || !bytes.Equal(result, []byte(key)) {
				t.Fatalf("Expected %s to hold its own name, got %q (exists=%v)", key, result, exists)
			}
		}
	}
}

func testConcurrentSameKey(t *testing.T, s store.IStore) {
	const writers = 16

	values := make(map[string]bool, writers)
	for w := 0; w < writers; w++ {
		values[fmt.Sprintf("value-%d", w)] = true
	}

	var wg sync.WaitGroup
	wg.Add(writers * 2)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			_ = s.Set("shared", []byte(fmt.Sprintf("value-%d", w)))
		}(w)
		go func() {
			defer wg.Done()
			// readers must only ever observe whole values
			if v, ok, _ := s.Get("shared"); ok && !values[string(v)] {
				t.Errorf("Observed torn value %q", v)
			}
		}()
	}
	wg.Wait()

	result, exists := mustGet(t, s, "shared")
	if !exists || !values[string(result)] {
		t.Errorf("Expected one of the written values, got %q", result)
	}
}
