package client

import (
	"context"
	"errors"
	"github.com/ValentinKolb/rKV/lib/frame"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/jackc/puddle/v2"
	"github.com/sony/gobreaker/v2"
	"time"
)

// endpointPool bundles the connection pool and the circuit breaker of one
// server endpoint
type endpointPool struct {
	endpoint string
	timeout  time.Duration
	pool     *puddle.Pool[*transport.Connection]
	breaker  *gobreaker.CircuitBreaker[frame.Frame]
}

// EndpointStats is a snapshot of the state of one endpoint
type EndpointStats struct {
	Endpoint      string
	TotalConns    int32
	IdleConns     int32
	AcquiredConns int32
	AcquireCount  int64
	BreakerState  gobreaker.State
	BreakerCounts gobreaker.Counts
}

// newEndpointPool creates the pool for one endpoint. No connection is opened
// until the first request.
func newEndpointPool(endpoint string, config common.ClientConfig, t transport.IRPCClientTransport) (*endpointPool, error) {
	maxSize := int32(config.Transport.ConnectionsPerEndpoint)
	if maxSize < 1 {
		maxSize = 1
	}

	pool, err := puddle.NewPool(&puddle.Config[*transport.Connection]{
		Constructor: func(ctx context.Context) (*transport.Connection, error) {
			return t.Dial(ctx, endpoint, config)
		},
		Destructor: func(c *transport.Connection) {
			_ = c.Close()
		},
		MaxSize: maxSize,
	})
	if err != nil {
		return nil, err
	}

	return &endpointPool{
		endpoint: endpoint,
		timeout:  time.Duration(config.TimeoutSecond) * time.Second,
		pool:     pool,
		breaker:  newCircuitBreaker(endpoint, config.Breaker),
	}, nil
}

// newCircuitBreaker creates the circuit breaker of an endpoint.
// Error replies of the server prove that the server is reachable and are
// therefore not counted as failures.
func newCircuitBreaker(endpoint string, config common.BreakerConfig) *gobreaker.CircuitBreaker[frame.Frame] {
	maxFailures := config.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return gobreaker.NewCircuitBreaker[frame.Frame](gobreaker.Settings{
		Name:        endpoint,
		MaxRequests: config.MaxRequests,
		Timeout:     time.Duration(config.TimeoutSecond) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			var serverErr *ServerError
			return err == nil || errors.As(err, &serverErr)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			Logger.Warningf("Circuit breaker of %s changed from %s to %s", name, from, to)
		},
	})
}

// execute sends one request and returns the response. Error frames are
// returned as *ServerError.
func (e *endpointPool) execute(ctx context.Context, req frame.Array) (frame.Frame, error) {
	return e.breaker.Execute(func() (frame.Frame, error) {
		return e.executeDirect(ctx, req)
	})
}

// executeDirect performs the request without the circuit breaker
func (e *endpointPool) executeDirect(ctx context.Context, req frame.Array) (frame.Frame, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	res, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	conn := res.Value()

	// the deadline covers writing the request and reading the response,
	// a zero deadline clears the one of an earlier request
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		res.Destroy()
		return nil, err
	}

	if err := conn.WriteFrame(req); err != nil {
		// invalid frames are rejected before anything is written
		if errors.Is(err, frame.ErrProtocol) {
			res.Release()
		} else {
			res.Destroy()
		}
		return nil, err
	}

	resp, err := conn.ReadFrame()
	if err != nil {
		// the stream state is unknown, never reuse the connection
		res.Destroy()
		return nil, err
	}
	res.Release()

	if errFrame, ok := resp.(frame.Error); ok {
		return nil, &ServerError{Msg: string(errFrame)}
	}
	return resp, nil
}

// stats returns a snapshot of the pool and breaker state
func (e *endpointPool) stats() EndpointStats {
	s := e.pool.Stat()
	return EndpointStats{
		Endpoint:      e.endpoint,
		TotalConns:    s.TotalResources(),
		IdleConns:     s.IdleResources(),
		AcquiredConns: s.AcquiredResources(),
		AcquireCount:  s.AcquireCount(),
		BreakerState:  e.breaker.State(),
		BreakerCounts: e.breaker.Counts(),
	}
}

func (e *endpointPool) close() {
	e.pool.Close()
}
