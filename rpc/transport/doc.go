// Package transport defines the interfaces and abstractions for the network
// layer of rKV and the Connection type that reads and writes frames.
//
// The package focuses on:
//   - Framing a byte stream into frame.Frame values and back
//   - Defining clear interfaces for client and server transport layers
//   - Enabling multiple transport implementations (TCP, Unix sockets)
//
// Key Components:
//
//   - Connection: Wraps a net.Conn with a growable read buffer and a buffered
//     writer. ReadFrame only touches the socket when the buffered bytes do not
//     contain a complete frame, WriteFrame flushes once per frame.
//
//   - IRPCServerTransport: Interface for server-side transport implementations
//     that accept connections and hand each of them to a ServerHandleFunc.
//
//   - IRPCClientTransport: Interface for client-side transport implementations
//     that dial endpoints and return ready-to-use connections.
//
// Read Buffer:
//
//	The read buffer starts with the configured capacity (DefaultBufferSize if
//	none is given). If it is full and still does not hold a complete frame, its
//	capacity is doubled. After every decoded frame the consumed bytes are
//	dropped from the front, so pipelined requests that arrived in the same read
//	are served from the buffer without further I/O.
//
// End of Stream:
//
//	ReadFrame returns io.EOF if the peer closed the connection between two
//	frames and ErrConnectionReset if it closed the connection inside a frame.
package transport
