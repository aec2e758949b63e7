package serve

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/server"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/ValentinKolb/rKV/rpc/transport/tcp"
	"github.com/ValentinKolb/rKV/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var (
	serveCmdConfig = common.DefaultServerConfig()
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the rKV server",
		Long:    `Start the rKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is RKV_<flag> (e.g. RKV_BUFFER_SIZE=8192)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	defaults := common.DefaultServerConfig()

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, defaults.Transport.Endpoint, cmdUtil.WrapString("The address on which the server will listen (e.g. 127.0.0.1:6379, /tmp/rkv.sock, ...)"))

	key = "shards"
	ServeCmd.PersistentFlags().Int(key, defaults.Shards, cmdUtil.WrapString("Number of store shards. 1 uses a single map behind one lock, larger values spread the keys over independently locked shards"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.BufferSize, cmdUtil.WrapString("Initial size of the read buffer of each connection in bytes. The buffer grows when a frame does not fit"))

	key = "unknown-command"
	ServeCmd.PersistentFlags().String(key, string(defaults.UnknownCommand), cmdUtil.WrapString("What to do with unknown commands or commands with the wrong number of arguments (close, reply). close drops the connection, reply answers with an error frame"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, defaults.TimeoutSecond, cmdUtil.WrapString("Idle timeout of a connection in seconds (0 disables the timeout)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, defaults.Transport.TCPNoDelay, cmdUtil.WrapString("Whether to enable TCP_NODELAY on accepted connections (only for tcp)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPKeepAliveSec, cmdUtil.WrapString("The keepalive interval of accepted connections in seconds (0 disables it, only for tcp)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPLingerSec, cmdUtil.WrapString("The linger time of accepted connections in seconds (negative keeps the OS default, only for tcp)"))

	key = "read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket read buffer in KB (0 keeps the OS default)"))

	key = "write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket write buffer in KB (0 keeps the OS default)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address of the HTTP endpoint serving /metrics and /info (e.g. 127.0.0.1:9100). Empty disables it"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, defaults.LogLevel, cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	policy, err := common.ParseUnknownCommandPolicy(viper.GetString("unknown-command"))
	if err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Transport.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Transport.BufferSize = viper.GetInt("buffer-size")
	serveCmdConfig.Transport.ReadBufferSize = viper.GetInt("read-buffer") * 1024
	serveCmdConfig.Transport.WriteBufferSize = viper.GetInt("write-buffer") * 1024
	serveCmdConfig.Transport.TCPNoDelay = viper.GetBool("tcp-nodelay")
	serveCmdConfig.Transport.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	serveCmdConfig.Transport.TCPLingerSec = viper.GetInt("tcp-linger")
	serveCmdConfig.Shards = viper.GetInt("shards")
	serveCmdConfig.UnknownCommand = policy
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	// validate
	if serveCmdConfig.Shards < 1 {
		return fmt.Errorf("invalid number of shards %d (must be at least 1)", serveCmdConfig.Shards)
	}
	if serveCmdConfig.Transport.BufferSize < 1 {
		return fmt.Errorf("invalid buffer size %d (must be at least 1)", serveCmdConfig.Transport.BufferSize)
	}
	if serveCmdConfig.TimeoutSecond < 0 {
		return fmt.Errorf("invalid timeout %d (must not be negative)", serveCmdConfig.TimeoutSecond)
	}
	if !common.IsValidLogLevel(serveCmdConfig.LogLevel) {
		return fmt.Errorf("invalid log level %s (expected one of: debug, info, warn, error)", serveCmdConfig.LogLevel)
	}

	return nil
}

// run starts the rKV server and blocks until it is stopped by a signal
func run(_ *cobra.Command, _ []string) error {
	common.InitLoggers(serveCmdConfig.LogLevel)

	// Parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "tcp":
		t = tcp.NewTCPServerTransport()
	case "unix":
		t = unix.NewUnixServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(
		serveCmdConfig,
		t,
		server.NewStore(serveCmdConfig),
	)

	addr, err := serv.Bind()
	if err != nil {
		return err
	}
	server.Logger.Infof("Listening on %s", addr)

	// stop the server on SIGINT / SIGTERM
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sig := <-sigs
		server.Logger.Infof("Received %s, shutting down", sig)
		if err := serv.Close(); err != nil {
			server.Logger.Errorf("Failed to stop server: %v", err)
		}
	}()

	if err := serv.Serve(); err != nil {
		return err
	}

	// Serve returns as soon as the listener is closed, wait for the handlers
	<-stopped
	return nil
}

// initConfig reads in ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("rkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
