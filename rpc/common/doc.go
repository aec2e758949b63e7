// Package common provides configuration structures and utilities shared by the
// rKV server, client and command line interface.
//
// Key Components:
//
//   - ServerConfig: Configuration of the server, including the transport
//     settings, the store layout, the unknown command policy and the metrics
//     endpoint. String() renders the configuration for the startup log.
//
//   - ClientConfig: Configuration of the client, controlling endpoints,
//     connection pooling, timeouts, retries and the circuit breaker.
//
//   - Logger: Custom logging implementation on top of Dragonboat's logger
//     package. Every package obtains its logger with logger.GetLogger(name),
//     InitLoggers installs the formatting factory and sets the level.
package common
