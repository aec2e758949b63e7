package server

import (
	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/frame"
	"github.com/ValentinKolb/rKV/lib/store"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for turning a request frame into a response frame
type IRPCServerAdapter interface {
	// Handle executes one request against the store and returns the response.
	// The executed command is returned for metrics and logging, it is nil if
	// the request was answered with a rejection.
	// A returned error means that the connection must be closed, no response
	// is sent in that case.
	Handle(req frame.Frame, store store.IStore) (resp frame.Frame, cmd *command.Command, err error)
}
