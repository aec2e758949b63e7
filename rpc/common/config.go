package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// UnknownCommandPolicy decides what the server does with requests it can not
// execute (unknown command names and wrong number of arguments)
type UnknownCommandPolicy string

const (
	// UnknownCommandClose logs the error and closes the connection
	UnknownCommandClose UnknownCommandPolicy = "close"
	// UnknownCommandReply answers with an error frame and keeps the connection open
	UnknownCommandReply UnknownCommandPolicy = "reply"
)

// ParseUnknownCommandPolicy validates a policy given as string
func ParseUnknownCommandPolicy(s string) (UnknownCommandPolicy, error) {
	switch p := UnknownCommandPolicy(strings.ToLower(s)); p {
	case UnknownCommandClose, UnknownCommandReply:
		return p, nil
	case "":
		return UnknownCommandClose, nil
	default:
		return "", fmt.Errorf("invalid unknown command policy: %s. must be one of close, reply", s)
	}
}

// ServerTransportConfig holds the settings of the server transport layer
type ServerTransportConfig struct {
	// Endpoint is the address to listen on (host:port or socket path)
	Endpoint string
	// BufferSize is the initial read buffer size per connection
	BufferSize int
	// Socket buffer sizes, 0 keeps the OS default
	ReadBufferSize  int
	WriteBufferSize int
	// TCP only settings
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int // negative keeps the OS default
}

// ServerConfig holds all configuration parameters of the rKV server.
type ServerConfig struct {
	Transport ServerTransportConfig

	// number of store shards, 1 selects the single lock store
	Shards int

	// what to do with requests that can not be executed
	UnknownCommand UnknownCommandPolicy

	// idle timeout per connection, 0 disables it
	TimeoutSecond int64

	// address of the HTTP metrics endpoint, empty disables it
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// DefaultServerConfig returns the server configuration used when no options are given
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Transport: ServerTransportConfig{
			Endpoint:     "127.0.0.1:6379",
			BufferSize:   4 * 1024,
			TCPNoDelay:   true,
			TCPLingerSec: -1,
		},
		Shards:         1,
		UnknownCommand: UnknownCommandClose,
		LogLevel:       "info",
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Unknown Commands", string(c.UnknownCommand))

	// Transport settings
	addSection("Transport")
	addField("Buffer Size", fmt.Sprintf("%d bytes", c.Transport.BufferSize))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))

	// Store
	addSection("Store")
	if c.Shards > 1 {
		addField("Implementation", "sharded")
		addField("Shards", strconv.Itoa(c.Shards))
	} else {
		addField("Implementation", "locked")
	}

	// Metrics
	addSection("Metrics")
	if c.MetricsEndpoint == "" {
		addField("Endpoint", "disabled")
	} else {
		addField("Endpoint", c.MetricsEndpoint)
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the settings of the client transport layer
type ClientTransportConfig struct {
	Endpoints              []string
	ConnectionsPerEndpoint int
	BufferSize             int
	TCPNoDelay             bool
	TCPKeepAliveSec        int
}

// BreakerConfig configures the circuit breaker of each endpoint
type BreakerConfig struct {
	// requests allowed while the breaker is half-open
	MaxRequests uint32
	// consecutive failures that open the breaker
	MaxFailures uint32
	// time the breaker stays open before it becomes half-open
	TimeoutSecond int
}

type ClientConfig struct {
	Transport     ClientTransportConfig
	Breaker       BreakerConfig
	TimeoutSecond int
	RetryCount    int
}

// DefaultClientConfig returns the client configuration used when no options are given
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Transport: ClientTransportConfig{
			Endpoints:              []string{"127.0.0.1:6379"},
			ConnectionsPerEndpoint: 4,
			BufferSize:             4 * 1024,
			TCPNoDelay:             true,
		},
		Breaker: BreakerConfig{
			MaxRequests:   1,
			MaxFailures:   5,
			TimeoutSecond: 10,
		},
		TimeoutSecond: 5,
		RetryCount:    2,
	}
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(max(1, c.Transport.ConnectionsPerEndpoint)))

	// Circuit breaker
	addSection("Circuit Breaker")
	addField("Max Requests", strconv.FormatUint(uint64(c.Breaker.MaxRequests), 10))
	addField("Max Failures", strconv.FormatUint(uint64(c.Breaker.MaxFailures), 10))
	addField("Open Timeout", fmt.Sprintf("%d sec", c.Breaker.TimeoutSecond))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
