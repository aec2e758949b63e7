package frame

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Wire Constants
// --------------------------------------------------------------------------

// Tag is the first byte of every frame and determines its type
type Tag byte

const (
	TagSimple  Tag = '+'
	TagError   Tag = '-'
	TagInteger Tag = ':'
	TagBulk    Tag = '$'
	TagArray   Tag = '*'
)

// Protocol limits. Frames exceeding them are rejected with a protocol error
// before any payload is buffered.
const (
	MaxBulkLen  = 512 * 1024 * 1024 // 512 MB, same as redis proto-max-bulk-len
	MaxArrayLen = 1024 * 1024
	MaxDepth    = 32
)

// terminator ends every line of the protocol
const terminator = "\r\n"

// --------------------------------------------------------------------------
// Frame Variants
// --------------------------------------------------------------------------

// Frame is one unit of the wire protocol. The set of implementations is closed:
// Simple, Error, Integer, Bulk, Null and Array.
type Frame interface {
	// Tag returns the tag byte the frame is encoded with (Null uses TagBulk)
	Tag() Tag
	// String returns a human-readable representation for logging
	String() string

	isFrame()
}

// Simple is a short status text, e.g. "OK". It must not contain CR or LF.
type Simple string

// Error is an error message sent to the peer. It must not contain CR or LF.
type Error string

// Integer is an unsigned 64-bit number.
type Integer uint64

// Bulk is an arbitrary binary payload.
type Bulk []byte

// Null marks the absence of a value.
type Null struct{}

// Array is an ordered sequence of nested frames.
type Array []Frame

func (Simple) Tag() Tag  { return TagSimple }
func (Error) Tag() Tag   { return TagError }
func (Integer) Tag() Tag { return TagInteger }
func (Bulk) Tag() Tag    { return TagBulk }
func (Null) Tag() Tag    { return TagBulk }
func (Array) Tag() Tag   { return TagArray }

func (Simple) isFrame()  {}
func (Error) isFrame()   {}
func (Integer) isFrame() {}
func (Bulk) isFrame()    {}
func (Null) isFrame()    {}
func (Array) isFrame()   {}

func (f Simple) String() string  { return fmt.Sprintf("Simple(%q)", string(f)) }
func (f Error) String() string   { return fmt.Sprintf("Error(%q)", string(f)) }
func (f Integer) String() string { return fmt.Sprintf("Integer(%d)", uint64(f)) }
func (f Bulk) String() string    { return fmt.Sprintf("Bulk(%q)", []byte(f)) }
func (Null) String() string      { return "Null" }

func (f Array) String() string {
	parts := make([]string, len(f))
	for i, elem := range f {
		parts[i] = elem.String()
	}
	return "Array[" + strings.Join(parts, ", ") + "]"
}
