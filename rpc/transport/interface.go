package transport

import (
	"context"
	"github.com/ValentinKolb/rKV/rpc/common"
	"net"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles one accepted connection.
// It is called by a server transport in a new goroutine for every connection
// and owns the connection until it returns. The transport closes the
// connection afterwards.
type ServerHandleFunc func(conn *Connection)

// IRPCServerTransport is the interface for the RPC transport layer
// It must accept a ServerConfig as a parameter
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler is called for every accepted connection
	RegisterHandler(handler ServerHandleFunc)
	// Bind creates the listener and returns the address it is bound to
	Bind(config common.ServerConfig) (net.Addr, error)
	// Serve accepts connections until Close is called.
	// It returns nil after Close and an error if accepting fails otherwise.
	Serve() error
	// Listen is a shortcut for Bind followed by Serve
	Listen(config common.ServerConfig) error
	// ActiveConnections returns the number of connections currently served
	ActiveConnections() int
	// Close stops accepting, closes all active connections and waits for
	// their handlers to return
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Dial opens a new connection to the endpoint
	Dial(ctx context.Context, endpoint string, config common.ClientConfig) (*Connection, error)
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}
