package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"sync"
	"sync/atomic"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector IServerConnector
	handler   transport.ServerHandleFunc
	config    common.ServerConfig
	listener  net.Listener

	// active connections, keyed by a per transport connection id
	conns    *xsync.MapOf[uint64, net.Conn]
	nextID   atomic.Uint64
	mu       sync.Mutex // guards closing and handlers.Add
	closing  bool
	handlers sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport that serves
// every connection in its own goroutine
func NewBaseServerTransport(connector IServerConnector) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
		conns:     xsync.NewMapOf[uint64, net.Conn](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Bind(config common.ServerConfig) (net.Addr, error) {
	t.config = config

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}
	t.listener = listener

	Logger.Infof("Bound %s server to %s", t.connector.GetName(), listener.Addr())
	return listener.Addr(), nil
}

func (t *serverTransport) Serve() error {
	if t.listener == nil {
		return fmt.Errorf("transport is not bound")
	}
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}

	Logger.Infof("Accepting %s connections on %s", t.connector.GetName(), t.listener.Addr())

	// Accept connections
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			// Case listener closed: regular shutdown
			if errors.Is(err, net.ErrClosed) || t.isClosing() {
				return nil
			}
			// Case temporary error (e.g. too many open files): keep accepting
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				Logger.Warningf("Accept error: %v", err)
				continue
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		// Apply transport specific socket options
		if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
			Logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
		}

		// Register the connection, unless Close was called in the meantime
		t.mu.Lock()
		if t.closing {
			t.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		id := t.nextID.Add(1)
		t.conns.Store(id, conn)
		t.handlers.Add(1)
		t.mu.Unlock()

		// Handle the connection in a goroutine
		go t.handleConnection(id, conn)
	}
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if _, err := t.Bind(config); err != nil {
		return err
	}
	return t.Serve()
}

func (t *serverTransport) Close() error {
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		return nil
	}
	t.closing = true
	t.mu.Unlock()

	// stop accepting new connections
	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}

	// closing the sockets unblocks handlers waiting in ReadFrame
	t.conns.Range(func(_ uint64, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})

	t.handlers.Wait()
	Logger.Infof("Closed %s server", t.connector.GetName())
	return err
}

func (t *serverTransport) ActiveConnections() int {
	return t.conns.Size()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection runs the handler for one connection and cleans up afterwards
func (t *serverTransport) handleConnection(id uint64, conn net.Conn) {
	defer t.handlers.Done()
	defer t.conns.Delete(id)
	defer conn.Close()

	Logger.Debugf("Accepted connection %d from %s", id, conn.RemoteAddr())
	t.handler(transport.NewConnection(conn, t.config.Transport.BufferSize))
	Logger.Debugf("Connection %d from %s closed", id, conn.RemoteAddr())
}

// isClosing reports whether Close was called
func (t *serverTransport) isClosing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closing
}
