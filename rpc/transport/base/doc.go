// Package base provides a foundation for the transport layers of rKV,
// implementing the connection handling independent of the specific network
// protocol (TCP, Unix sockets). It is extended with protocol-specific
// connectors.
//
// The package focuses on:
//   - Protocol-agnostic client and server transport implementations
//   - One goroutine per accepted connection
//   - Tracking of active connections for a clean shutdown
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - serverTransport: Accepts connections, applies socket options through the
//     connector and runs the registered handler for each connection in its own
//     goroutine. Active connections are kept in an xsync.MapOf so that Close can
//     close them and wait for their handlers.
//
//   - clientTransport: Dials an endpoint, applies socket options and wraps the
//     socket in a transport.Connection. Pooling is left to the caller (see
//     rpc/client).
//
// Shutdown:
//
//	Close first closes the listener, which makes the accept loop in Serve
//	return nil. Then all active sockets are closed, which makes blocked reads
//	in the handlers fail, and Close waits until every handler has returned.
package base
