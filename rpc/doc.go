// Package rpc provides the network layer of rKV. It carries GET and SET
// commands between clients and the server over a RESP framed byte stream.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures and logging shared by client and server.
//
//   - transport: The buffered frame Connection and the network abstractions
//     with pluggable implementations (TCP, Unix sockets).
//
//   - client: An RPC client implementing the store interface, with pooled
//     connections and a circuit breaker per endpoint.
//
//   - server: The RPC server. It runs one handler per connection that reads
//     frames, executes them against the shared store and writes the replies.
package rpc
