// Package cmd implements the command-line interface of rKV. It provides a
// small command tree for running the server and for talking to it as a
// client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts and configures the rKV server
//   - kv: Client commands (get, set) and a small load generator (perf)
//   - util: Shared utilities for flag handling and client configuration (internal use)
//
// Every flag can also be given as environment variable with the prefix RKV_
// (dashes become underscores, e.g. RKV_BUFFER_SIZE=8192). Variables are also
// read from .env and .env.local in the working directory.
//
// See rkv --help for a list of all commands.
package cmd
