package server

import (
	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/frame"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/rpc/common"
)

// NewCommandServerAdapter creates the adapter that executes GET and SET
// commands. The policy decides whether requests that can not be executed
// close the connection or are answered with an error frame.
func NewCommandServerAdapter(policy common.UnknownCommandPolicy) IRPCServerAdapter {
	return &commandServerAdapterImpl{policy: policy}
}

type commandServerAdapterImpl struct {
	policy common.UnknownCommandPolicy
}

func (adapter *commandServerAdapterImpl) Handle(req frame.Frame, s store.IStore) (frame.Frame, *command.Command, error) {
	// Check for nil store
	if s == nil {
		return frame.Error("ERR handler: store is nil"), nil, nil
	}

	// Decode the command (invalid frame, wrong number of arguments)
	cmd, err := command.FromFrame(req)
	if err != nil {
		return adapter.reject(cmd, err)
	}

	// Execute the command (unknown command)
	resp, err := cmd.Apply(s)
	if err != nil {
		return adapter.reject(cmd, err)
	}
	return resp, cmd, nil
}

// reject applies the unknown command policy to a request that can not be executed
func (adapter *commandServerAdapterImpl) reject(cmd *command.Command, err error) (frame.Frame, *command.Command, error) {
	if adapter.policy == common.UnknownCommandReply {
		return command.ErrorReply(err), nil, nil
	}
	return nil, cmd, err
}
