// Package client implements the RPC client of rKV. RPCStore implements the
// store.IStore interface and forwards every operation to a server over the
// wire protocol, so callers can use a remote store like a local one.
//
// The package focuses on:
//   - Transparent access to remote stores
//   - Connection pooling per endpoint
//   - Failure isolation with one circuit breaker per endpoint
//   - Key based endpoint selection
//
// Key Components:
//
//   - NewRPCStore: Factory function that creates a client for the configured
//     endpoints using the given transport.
//
//   - Endpoint Pools: Every endpoint has a puddle pool of transport.Connection
//     values (at most ConnectionsPerEndpoint) and a gobreaker circuit breaker.
//     A connection carries one request at a time. Connections that saw an I/O
//     or protocol error are destroyed instead of being returned to the pool.
//
//   - Endpoint Selection: The key is hashed with xxh3 and mapped to an endpoint
//     with jump consistent hashing, so every key is always served by the same
//     endpoint.
//
// Error Handling:
//
//	Error replies of the server are returned as *ServerError and are not
//	retried. They also do not count as failures for the circuit breaker.
//	Transport errors are retried up to RetryCount times on a fresh connection.
//	If the circuit breaker of an endpoint is open, requests fail immediately
//	with gobreaker.ErrOpenState.
//
// Usage Example:
//
//	config := common.DefaultClientConfig()
//	config.Transport.Endpoints = []string{"localhost:6379"}
//
//	s, err := client.NewRPCStore(config, tcp.NewTCPClientTransport())
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	_ = s.Set("mykey", []byte("myvalue"))
//	value, exists, _ := s.Get("mykey")
//
// Thread Safety:
//
//	RPCStore is safe for concurrent use. Concurrent requests share the
//	connection pools.
package client
