// Package tcp implements the TCP transport of rKV. It provides concrete
// implementations of the base package's connector interfaces.
//
// Key Components:
//
//   - clientConnector: Dials TCP endpoints and applies no-delay and keep-alive
//     settings of the client configuration.
//
//   - serverConnector: Creates the TCP listener and applies the socket options
//     of the server configuration (no-delay, keep-alive, linger, socket buffer
//     sizes) to every accepted connection.
//
// See the base package documentation for the connection handling itself.
package tcp
