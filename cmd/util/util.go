package util

import (
	"fmt"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/ValentinKolb/rKV/rpc/transport/tcp"
	"github.com/ValentinKolb/rKV/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	defaults := common.DefaultClientConfig()

	key := "timeout"
	cmd.PersistentFlags().Int(key, defaults.TimeoutSecond, WrapString("The timeout in seconds of a single request"))

	key = "transport-endpoints"
	cmd.PersistentFlags().String(key, strings.Join(defaults.Transport.Endpoints, ","), WrapString("The address of the rKV server. Multiple endpoints can be specified as a comma-separated list, keys are spread over them by hash"))

	key = "transport-conn-per-endpoint"
	cmd.PersistentFlags().Int(key, defaults.Transport.ConnectionsPerEndpoint, WrapString("Maximum number of pooled connections per endpoint"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, defaults.RetryCount, WrapString("How many times to retry a request after a transport error"))

	key = "transport-buffer-size"
	cmd.PersistentFlags().Int(key, defaults.Transport.BufferSize, WrapString("Initial size of the read buffer of each connection in bytes"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, defaults.Transport.TCPNoDelay, WrapString("Whether to enable TCP_NODELAY for the transport (only for tcp)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, defaults.Transport.TCPKeepAliveSec, WrapString("The keepalive interval for the transport (in seconds, only for tcp)"))

	key = "breaker-max-requests"
	cmd.PersistentFlags().Uint32(key, defaults.Breaker.MaxRequests, WrapString("Requests let through while the circuit breaker of an endpoint is half-open"))

	key = "breaker-max-failures"
	cmd.PersistentFlags().Uint32(key, defaults.Breaker.MaxFailures, WrapString("Consecutive failures after which the circuit breaker of an endpoint opens"))

	key = "breaker-timeout"
	cmd.PersistentFlags().Int(key, defaults.Breaker.TimeoutSecond, WrapString("Seconds the circuit breaker stays open before trying the endpoint again"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("rkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	conf := &common.ClientConfig{
		TimeoutSecond: viper.GetInt("timeout"),
		RetryCount:    viper.GetInt("transport-retries"),
		Transport: common.ClientTransportConfig{
			Endpoints:              splitList(viper.GetString("transport-endpoints")),
			ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
			BufferSize:             viper.GetInt("transport-buffer-size"),
			TCPNoDelay:             viper.GetBool("transport-tcp-nodelay"),
			TCPKeepAliveSec:        viper.GetInt("transport-tcp-keepalive"),
		},
		Breaker: common.BreakerConfig{
			MaxRequests:   viper.GetUint32("breaker-max-requests"),
			MaxFailures:   viper.GetUint32("breaker-max-failures"),
			TimeoutSecond: viper.GetInt("breaker-timeout"),
		},
	}

	return conf
}

// GetTransport creates transport based on configuration
func GetTransport() (transport.IRPCClientTransport, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// splitList splits a comma-separated list and drops empty entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
