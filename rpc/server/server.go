package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/rKV/lib/frame"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/lib/store/lstore"
	"github.com/ValentinKolb/rKV/lib/store/sstore"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net"
	"net/http"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("rpc/server")

// NewStore creates the store selected by the configuration: the single lock
// store for one shard, the sharded store otherwise
func NewStore(config common.ServerConfig) store.IStore {
	if config.Shards > 1 {
		return sstore.NewShardedStore(&sstore.Options{NumShards: config.Shards})
	}
	return lstore.NewLocalStore()
}

// NewRPCServer creates a new RPC server
// It takes a config, a transport and the store shared by all connections
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		tcp.NewTCPServerTransport(),
//		server.NewStore(config),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	store store.IStore,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	s := &RPCServer{
		config:    config,
		transport: transport,
		store:     store,
		adapter:   NewCommandServerAdapter(config.UnknownCommand),
	}
	s.metrics = newServerMetrics(transport.ActiveConnections)

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return s
}

// RPCServer serves the store over a server transport
type RPCServer struct {
	config        common.ServerConfig
	transport     transport.IRPCServerTransport
	store         store.IStore
	adapter       IRPCServerAdapter
	metrics       *serverMetrics
	metricsServer *http.Server
	boundAddr     net.Addr
}

// Bind registers the connection handler, creates the listener and starts the
// metrics endpoint if one is configured. It returns the address the server
// listens on.
func (s *RPCServer) Bind() (net.Addr, error) {
	s.transport.RegisterHandler(s.handleConnection)

	addr, err := s.transport.Bind(s.config)
	if err != nil {
		return nil, err
	}
	s.boundAddr = addr

	if s.config.MetricsEndpoint != "" {
		if err := s.startMetrics(); err != nil {
			_ = s.transport.Close()
			return nil, err
		}
	}

	return addr, nil
}

// Serve accepts connections until Close is called.
// If Bind was not called yet, Serve calls it first.
func (s *RPCServer) Serve() error {
	if s.boundAddr == nil {
		if _, err := s.Bind(); err != nil {
			return err
		}
	}
	return s.transport.Serve()
}

// Close stops the server: the listener and all connections are closed and
// Close waits until every handler returned
func (s *RPCServer) Close() error {
	if s.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			Logger.Warningf("Failed to stop metrics endpoint: %v", err)
		}
	}
	return s.transport.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// startMetrics starts the HTTP metrics endpoint in the background
func (s *RPCServer) startMetrics() error {
	listener, err := net.Listen("tcp", s.config.MetricsEndpoint)
	if err != nil {
		return fmt.Errorf("failed to create metrics listener: %w", err)
	}

	debug := strings.EqualFold(s.config.LogLevel, "debug")
	s.metricsServer = &http.Server{
		Handler:           newMetricsHandler(s.metrics, s.store, debug),
		ReadHeaderTimeout: 5 * time.Second,
	}

	Logger.Infof("Serving metrics on http://%s/metrics", listener.Addr())
	go func() {
		if err := s.metricsServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("Metrics endpoint failed: %v", err)
		}
	}()
	return nil
}

// handleConnection runs the read-dispatch-write loop for one connection.
// Requests are answered strictly in the order they arrive.
func (s *RPCServer) handleConnection(conn *transport.Connection) {
	s.metrics.connectionsTotal.Inc()
	remote := conn.RemoteAddr()

	// Timeout in seconds
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Errorf("Failed to set read deadline: %v", err)
				return
			}
		}

		// Read the next request
		req, err := conn.ReadFrame()

		// Case EOF: Connection closed by client
		if errors.Is(err, io.EOF) {
			Logger.Debugf("Connection closed by client %s", remote)
			return
		}

		// Case server shutdown: socket closed by the transport
		if errors.Is(err, net.ErrClosed) {
			return
		}

		// Case error: log and close connection
		if err != nil {
			if errors.Is(err, frame.ErrProtocol) {
				s.metrics.protocolErrors.Inc()
			}
			Logger.Errorf("Error reading request from %s: %v", remote, err)
			return
		}

		// Execute the request
		start := time.Now()
		resp, cmd, err := s.adapter.Handle(req, s.store)
		if err != nil {
			s.metrics.rejectedCommands.Inc()
			Logger.Errorf("Closing connection to %s: %v", remote, err)
			return
		}
		if cmd != nil {
			_, miss := resp.(frame.Null)
			s.metrics.observeCommand(cmd, miss, start)
			Logger.Debugf("%s from %s took %s", cmd, remote, time.Since(start))
		} else {
			s.metrics.rejectedCommands.Inc()
		}

		// Write the response
		if timeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Errorf("Failed to set write deadline: %v", err)
				return
			}
		}
		if err := conn.WriteFrame(resp); err != nil {
			Logger.Errorf("Failed to write response to %s: %v", remote, err)
			return
		}
	}
}
