package command

//go:generate mockgen -destination=mocks_test.go -package=$GOPACKAGE github.com/ValentinKolb/rKV/lib/store IStore

import (
	"fmt"
	"github.com/ValentinKolb/rKV/lib/frame"
	"github.com/ValentinKolb/rKV/lib/store"
	"strings"
)

// CommandType identifies the command of a request
type CommandType uint8

const (
	CommandTUnknown CommandType = iota
	CommandTGet
	CommandTSet
)

func (t CommandType) String() string {
	switch t {
	case CommandTGet:
		return "GET"
	case CommandTSet:
		return "SET"
	default:
		return "UNKNOWN"
	}
}

// Command is a request decoded from one frame.
// Name holds the command name as it was sent by the client.
type Command struct {
	Type  CommandType
	Name  string
	Key   string
	Value []byte
}

// NewGet creates a GET command
func NewGet(key string) *Command {
	return &Command{Type: CommandTGet, Name: "GET", Key: key}
}

// NewSet creates a SET command
func NewSet(key string, value []byte) *Command {
	return &Command{Type: CommandTSet, Name: "SET", Key: key, Value: value}
}

// String returns a short description for logging, values are not included
func (c *Command) String() string {
	switch c.Type {
	case CommandTGet:
		return fmt.Sprintf("GET %q", c.Key)
	case CommandTSet:
		return fmt.Sprintf("SET %q (%d bytes)", c.Key, len(c.Value))
	default:
		return fmt.Sprintf("UNKNOWN %q", c.Name)
	}
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// FromFrame decodes a command from a request frame.
//
// The frame must be a non-empty array of bulk or simple strings, the first
// element names the command (case-insensitive). A well-formed frame with an
// unrecognised name returns a command of type CommandTUnknown and no error.
func FromFrame(f frame.Frame) (*Command, error) {
	arr, ok := f.(frame.Array)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrInvalidCommand, f)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrInvalidCommand)
	}

	args := make([][]byte, len(arr))
	for i, el := range arr {
		switch v := el.(type) {
		case frame.Bulk:
			args[i] = v
		case frame.Simple:
			args[i] = []byte(v)
		default:
			return nil, fmt.Errorf("%w: element %d is %s", ErrInvalidCommand, i, el)
		}
	}

	name := string(args[0])
	switch strings.ToUpper(name) {
	case "GET":
		if len(args) != 2 {
			return &Command{Type: CommandTGet, Name: name}, fmt.Errorf("%w for '%s' command", ErrWrongNumberOfArgs, name)
		}
		return &Command{Type: CommandTGet, Name: name, Key: string(args[1])}, nil
	case "SET":
		if len(args) != 3 {
			return &Command{Type: CommandTSet, Name: name}, fmt.Errorf("%w for '%s' command", ErrWrongNumberOfArgs, name)
		}
		return &Command{Type: CommandTSet, Name: name, Key: string(args[1]), Value: args[2]}, nil
	default:
		return &Command{Type: CommandTUnknown, Name: name}, nil
	}
}

// ToFrame builds the request frame for the command
func (c *Command) ToFrame() frame.Array {
	switch c.Type {
	case CommandTGet:
		return frame.Array{frame.Bulk("GET"), frame.Bulk(c.Key)}
	case CommandTSet:
		return frame.Array{frame.Bulk("SET"), frame.Bulk(c.Key), frame.Bulk(c.Value)}
	default:
		return frame.Array{frame.Bulk(c.Name)}
	}
}

// --------------------------------------------------------------------------
// Execution
// --------------------------------------------------------------------------

// Apply executes the command against the store and returns the response frame.
//
// GET answers with the value as bulk frame or null, SET with the simple string
// "OK". Errors of the store are reported to the client as error frame, the
// returned error is only set for unknown commands.
func (c *Command) Apply(s store.IStore) (frame.Frame, error) {
	switch c.Type {
	case CommandTGet:
		value, ok, err := s.Get(c.Key)
		if err != nil {
			return errorFrame(err), nil
		}
		if !ok {
			return frame.Null{}, nil
		}
		return frame.Bulk(value), nil

	case CommandTSet:
		if err := s.Set(c.Key, c.Value); err != nil {
			return errorFrame(err), nil
		}
		return frame.Simple("OK"), nil

	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnknownCommand, c.Name)
	}
}

// ErrorReply returns the error frame sent to clients for a failed command
func ErrorReply(err error) frame.Error {
	return errorFrame(err)
}

// maxErrorLen limits the message of error replies, command names are echoed in it
const maxErrorLen = 512

func errorFrame(err error) frame.Error {
	// error frames must be valid UTF-8 without line breaks
	msg := strings.NewReplacer("\r", " ", "\n", " ").Replace(err.Error())
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	msg = strings.ToValidUTF8(msg, "?")
	return frame.Error("ERR " + msg)
}
