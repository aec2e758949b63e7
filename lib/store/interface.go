package store

import (
	"fmt"
	"github.com/ValentinKolb/rKV/lib/store/util"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the interface shared by every key-value store of rKV. It is used by
// the server to execute commands and implemented by the RPC client, so that
// callers can not tell a local store from a remote one.
//
// All implementations must be safe for concurrent use. Every operation is
// atomic on its own, there is no atomicity across operations (e.g. no
// get-then-set).
type IStore interface {
	// Set inserts or updates a key-value pair.
	Set(key string, value []byte) (err error)
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key string) (value []byte, loaded bool, err error)
	// GetInfo returns metadata about the store.
	// It is not guaranteed that all fields are filled in!
	GetInfo() (info Info, err error)
}

// Implementation names the store implementation
type Implementation string

const (
	ImplLocked  Implementation = "locked"
	ImplSharded Implementation = "sharded"
)

// Info holds metadata about a store
type Info struct {
	Implementation Implementation          `json:"implementation"`
	Keys           int                     `json:"keys"`
	SizeBytes      int                     `json:"size_bytes"`
	Shards         int                     `json:"shards"`
	Distribution   *util.DistributionStats `json:"distribution,omitempty"`
}

// String returns a formatted string representation of the info
func (i Info) String() string {
	s := fmt.Sprintf("%s store: %d keys, %d bytes, %d shard(s)", i.Implementation, i.Keys, i.SizeBytes, i.Shards)
	if i.Distribution != nil {
		s += fmt.Sprintf(", distribution quality %.2f", i.Distribution.DistributionQuality)
	}
	return s
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the store.
	RetCInvalidOperation                    // 3: Invalid operation.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
