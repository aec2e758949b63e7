// Package server implements the rKV server: it accepts connections through a
// server transport and executes GET and SET commands against a shared store.
//
// The package focuses on:
//   - One read-dispatch-write loop per connection
//   - A single store instance shared by all connections
//   - A configurable policy for requests that can not be executed
//   - Metrics in Prometheus text format
//
// Key Components:
//
//   - RPCServer: Owns the transport, the store and the metrics. Bind creates the
//     listener, Serve accepts connections, Close shuts everything down.
//
//   - IRPCServerAdapter: Interface defining how a request frame is turned into
//     a response frame. NewCommandServerAdapter decodes the frame into a
//     command.Command and applies it to the store.
//
//   - NewStore: Creates the store selected by the configuration.
//
// Connection Handling:
//
//	Every connection is served by its own goroutine. The handler reads one
//	frame, executes it and writes the response before it reads the next frame,
//	so responses are sent in request order. The connection is closed when the
//	client disconnects, when a frame is malformed, or when an I/O error occurs.
//	Errors of one connection never affect other connections or the accept
//	loop.
//
// Unknown Commands:
//
//	With common.UnknownCommandClose (default) a request with an unknown command
//	name or a wrong number of arguments is logged and the connection is closed.
//	With common.UnknownCommandReply the server answers with an error frame, e.g.
//	"-ERR unknown command 'PING'", and keeps serving the connection.
//	Malformed frames always close the connection since the byte stream can not
//	be resynchronised.
//
// Metrics:
//
//	If a metrics endpoint is configured, the server exposes GET /metrics in
//	Prometheus text format and GET /info with the store.Info as JSON. The
//	metrics include connection counts, commands per type, GET misses, rejected
//	requests, protocol errors and a command latency histogram.
//
// Usage Example:
//
//	config := common.DefaultServerConfig()
//
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(),
//	  server.NewStore(config),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
package server
