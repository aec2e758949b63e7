package client

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/rKV/lib/frame"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sony/gobreaker/v2"
	"github.com/zeebo/xxh3"
)

var (
	Logger = logger.GetLogger("rpc/client")
)

// ErrUnexpectedResponse is returned if the server answers with a frame that
// does not fit the request
var ErrUnexpectedResponse = errors.New("unexpected response")

// ServerError is an error reply sent by the server
type ServerError struct {
	Msg string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Msg)
}

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
	endpoints []string
	pools     *xsync.MapOf[string, *endpointPool]
}

// newRPCClientAdapter creates the endpoint pools for all configured endpoints
func newRPCClientAdapter(config common.ClientConfig, t transport.IRPCClientTransport) (*rpcClientAdapter, error) {
	if len(config.Transport.Endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints provided")
	}

	a := &rpcClientAdapter{
		config:    config,
		transport: t,
		pools:     xsync.NewMapOf[string, *endpointPool](),
	}

	for _, endpoint := range config.Transport.Endpoints {
		if _, ok := a.pools.Load(endpoint); ok {
			continue // duplicate endpoint
		}
		pool, err := newEndpointPool(endpoint, config, t)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create pool for %s: %w", endpoint, err)
		}
		a.pools.Store(endpoint, pool)
		a.endpoints = append(a.endpoints, endpoint)
	}

	Logger.Infof("Created client for %d endpoint(s) using %s transport", len(a.endpoints), t.GetName())
	return a, nil
}

// selectEndpoint maps a key to an endpoint. The same key always uses the same
// endpoint as long as the endpoint list does not change.
func (a *rpcClientAdapter) selectEndpoint(key string) *endpointPool {
	idx := jumpHash(xxh3.HashString(key), len(a.endpoints))
	pool, _ := a.pools.Load(a.endpoints[idx])
	return pool
}

// invokeRPCRequest is a helper function used by the RPC clients to send requests.
// The request is sent to the endpoint responsible for the key. Transport
// errors are retried up to RetryCount times, error replies of the server and
// an open circuit breaker are returned immediately.
func (a *rpcClientAdapter) invokeRPCRequest(ctx context.Context, key string, req frame.Array) (frame.Frame, error) {
	pool := a.selectEndpoint(key)

	var err error
	for attempt := 0; attempt <= max(0, a.config.RetryCount); attempt++ {
		var resp frame.Frame
		resp, err = pool.execute(ctx, req)
		if err == nil {
			return resp, nil
		}

		var serverErr *ServerError
		if errors.As(err, &serverErr) ||
			errors.Is(err, gobreaker.ErrOpenState) ||
			errors.Is(err, gobreaker.ErrTooManyRequests) ||
			errors.Is(err, frame.ErrProtocol) ||
			ctx.Err() != nil {
			return nil, err
		}

		Logger.Debugf("Request to %s failed (attempt %d/%d): %v", pool.endpoint, attempt+1, a.config.RetryCount+1, err)
	}

	return nil, fmt.Errorf("request to %s failed: %w", pool.endpoint, err)
}

// stats returns a snapshot of all endpoints in configuration order
func (a *rpcClientAdapter) stats() []EndpointStats {
	stats := make([]EndpointStats, 0, len(a.endpoints))
	for _, endpoint := range a.endpoints {
		if pool, ok := a.pools.Load(endpoint); ok {
			stats = append(stats, pool.stats())
		}
	}
	return stats
}

// close closes all connection pools
func (a *rpcClientAdapter) close() {
	a.pools.Range(func(_ string, pool *endpointPool) bool {
		pool.close()
		return true
	})
}

// jumpHash implements the Jump consistent hashing algorithm
// (https://arxiv.org/abs/1406.2294). Adding an endpoint only moves the keys
// that are mapped to the new endpoint.
func jumpHash(key uint64, numBuckets int) int {
	if numBuckets <= 0 {
		return 0
	}

	var b int64 = -1
	var j int64

	for j < int64(numBuckets) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}

	return int(b)
}
