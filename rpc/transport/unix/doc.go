// Package unix implements the Unix domain socket transport of rKV. It uses the
// same wire format as the TCP transport and is meant for clients running on
// the same machine as the server.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates the socket file (an existing file at the
//     endpoint path is removed first) and accepts connections
package unix
