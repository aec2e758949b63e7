// Package command translates request frames into typed commands and executes
// them against a store.
//
// A request is an array frame whose first element is the command name and
// whose remaining elements are the arguments, e.g.
//
//	*3\r\n$3\r\nSET\r\n$5\r\nhello\r\n$5\r\nworld\r\n
//
// Supported commands:
//
//   - GET key: answers with the stored value as bulk frame or with a null frame
//     if the key does not exist.
//   - SET key value: stores the value and answers with the simple string "OK".
//
// Every other name decodes to a command of type CommandTUnknown. What happens
// with unknown commands is decided by the caller (see rpc/server).
//
// The package is used on both sides of the wire: the server decodes with
// FromFrame and executes with Apply, the client builds request frames with
// NewGet, NewSet and ToFrame.
package command
