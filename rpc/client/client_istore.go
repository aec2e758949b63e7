package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/frame"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a config and a transport as parameters
// Connections are opened lazily on the first request to an endpoint.
func NewRPCStore(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
) (*RPCStore, error) {
	adapter, err := newRPCClientAdapter(config, transport)
	if err != nil {
		return nil, err
	}
	return &RPCStore{adapter}, nil
}

// RPCStore implements store.IStore on top of the wire protocol
type RPCStore struct {
	*rpcClientAdapter
}

var _ store.IStore = (*RPCStore)(nil)

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (s *RPCStore) Set(key string, value []byte) error {
	return s.SetContext(context.Background(), key, value)
}

func (s *RPCStore) Get(key string) ([]byte, bool, error) {
	return s.GetContext(context.Background(), key)
}

// GetInfo is not available over the wire protocol
func (s *RPCStore) GetInfo() (store.Info, error) {
	return store.Info{}, store.NewError(store.RetCUnsupportedOperation, "GetInfo is not supported by the rpc client")
}

// --------------------------------------------------------------------------
// Additional Methods
// --------------------------------------------------------------------------

// SetContext is Set with a context for cancellation
func (s *RPCStore) SetContext(ctx context.Context, key string, value []byte) error {
	resp, err := s.invokeRPCRequest(ctx, key, command.NewSet(key, value).ToFrame())
	if err != nil {
		return err
	}
	if ok, isSimple := resp.(frame.Simple); !isSimple || ok != "OK" {
		return fmt.Errorf("%w to SET: %s", ErrUnexpectedResponse, resp)
	}
	return nil
}

// GetContext is Get with a context for cancellation
func (s *RPCStore) GetContext(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := s.invokeRPCRequest(ctx, key, command.NewGet(key).ToFrame())
	if err != nil {
		return nil, false, err
	}
	switch v := resp.(type) {
	case frame.Bulk:
		return v, true, nil
	case frame.Null:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("%w to GET: %s", ErrUnexpectedResponse, resp)
	}
}

// Stats returns the pool and circuit breaker state of every endpoint
func (s *RPCStore) Stats() []EndpointStats {
	return s.stats()
}

// Close closes all connections. The store must not be used afterwards.
func (s *RPCStore) Close() {
	s.close()
}
