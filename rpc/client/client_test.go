package client

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/server"
	"github.com/ValentinKolb/rKV/rpc/transport/tcp"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func startServer(t *testing.T, policy common.UnknownCommandPolicy) string {
	t.Helper()

	config := common.DefaultServerConfig()
	config.Transport.Endpoint = "127.0.0.1:0"
	config.UnknownCommand = policy
	config.LogLevel = "error"

	s := server.NewRPCServer(config, tcp.NewTCPServerTransport(), server.NewStore(config))
	addr, err := s.Bind()
	require.NoError(t, err)
	go func() { _ = s.Serve() }()
	t.Cleanup(func() { _ = s.Close() })

	return addr.String()
}

func newClient(t *testing.T, endpoints ...string) *RPCStore {
	t.Helper()

	config := common.DefaultClientConfig()
	config.Transport.Endpoints = endpoints
	config.TimeoutSecond = 2
	config.RetryCount = 1

	s, err := NewRPCStore(config, tcp.NewTCPClientTransport())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func TestSetGet(t *testing.T) {
	s := newClient(t, startServer(t, common.UnknownCommandClose))

	require.NoError(t, s.Set("hello", []byte("world")))

	value, ok, err := s.Get("hello")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("world"), value)

	value, ok, err = s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestEmptyAndBinaryValues(t *testing.T) {
	s := newClient(t, startServer(t, common.UnknownCommandClose))

	require.NoError(t, s.Set("empty", []byte{}))
	value, ok, err := s.Get("empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)

	binary := []byte{0, '\r', '\n', 0xff}
	require.NoError(t, s.Set("binary", binary))
	value, _, err = s.Get("binary")
	require.NoError(t, err)
	assert.Equal(t, binary, value)
}

func TestConcurrentClients(t *testing.T) {
	s := newClient(t, startServer(t, common.UnknownCommandClose))

	const workers = 20
	const keysPerWorker = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				assert.NoError(t, s.Set(key, []byte(key)))
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		for i := 0; i < keysPerWorker; i++ {
			key := fmt.Sprintf("w%d-k%d", w, i)
			value, ok, err := s.Get(key)
			require.NoError(t, err)
			require.True(t, ok, key)
			require.Equal(t, []byte(key), value)
		}
	}

	// the pool never opens more connections than configured
	stats := s.Stats()
	require.Len(t, stats, 1)
	assert.LessOrEqual(t, stats[0].TotalConns, int32(common.DefaultClientConfig().Transport.ConnectionsPerEndpoint))
	assert.Equal(t, gobreaker.StateClosed, stats[0].BreakerState)
}

func TestKeysAreSpreadOverEndpoints(t *testing.T) {
	a := startServer(t, common.UnknownCommandClose)
	b := startServer(t, common.UnknownCommandClose)
	s := newClient(t, a, b)

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		require.NoError(t, s.Set(key, []byte(key)))
	}

	// every endpoint received some of the keys
	for _, st := range s.Stats() {
		assert.Greater(t, st.AcquireCount, int64(0), st.Endpoint)
	}

	// reads go to the endpoint that received the write
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		value, ok, err := s.Get(key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte(key), value)
	}
}

func TestGetInfoIsUnsupported(t *testing.T) {
	s := newClient(t, startServer(t, common.UnknownCommandClose))

	_, err := s.GetInfo()
	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, store.RetCUnsupportedOperation, storeErr.Code)
}

func TestUnreachableEndpointOpensBreaker(t *testing.T) {
	// reserve a port and close it again, so nothing is listening
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	config := common.DefaultClientConfig()
	config.Transport.Endpoints = []string{addr}
	config.TimeoutSecond = 1
	config.RetryCount = 0
	config.Breaker.MaxFailures = 2
	config.Breaker.TimeoutSecond = 60

	s, err := NewRPCStore(config, tcp.NewTCPClientTransport())
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 2; i++ {
		assert.Error(t, s.Set("k", []byte("v")))
	}

	start := time.Now()
	err = s.Set("k", []byte("v"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNoEndpoints(t *testing.T) {
	config := common.DefaultClientConfig()
	config.Transport.Endpoints = nil
	_, err := NewRPCStore(config, tcp.NewTCPClientTransport())
	assert.Error(t, err)
}

func TestJumpHash(t *testing.T) {
	assert.Equal(t, 0, jumpHash(12345, 1))
	assert.Equal(t, 0, jumpHash(12345, 0))

	// stable for the same key
	assert.Equal(t, jumpHash(42, 10), jumpHash(42, 10))

	// growing the bucket count only moves keys to the new bucket
	for key := uint64(0); key < 1000; key++ {
		before := jumpHash(key, 4)
		after := jumpHash(key, 5)
		if before != after {
			assert.Equal(t, 4, after)
		}
	}
}
