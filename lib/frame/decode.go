package frame

import (
	"bytes"
	"math"
	"unicode/utf8"
)

// MaxLineLen limits the length of a single protocol line (text frames and
// length headers). Longer lines are rejected instead of being buffered.
const MaxLineLen = 64 * 1024

var crlf = []byte(terminator)

// --------------------------------------------------------------------------
// Public API
// --------------------------------------------------------------------------

// Check reports whether buf starts with a complete frame. It returns the
// number of bytes the frame occupies, ErrIncomplete if buf only holds a
// prefix of a frame or a *ProtocolError if the data is malformed.
//
// Check never modifies buf and never looks beyond len(buf).
func Check(buf []byte) (int, error) {
	c := cursor{buf: buf}
	if _, err := c.decode(0, false); err != nil {
		return 0, err
	}
	return c.pos, nil
}

// Parse decodes the frame at the start of buf and returns it together with the
// index of the first byte after the frame. Callers are expected to call Check
// first; Parse performs the same validation and returns the same errors.
//
// Bulk payloads are copied, the returned frame does not reference buf.
func Parse(buf []byte) (Frame, int, error) {
	c := cursor{buf: buf}
	f, err := c.decode(0, true)
	if err != nil {
		return nil, 0, err
	}
	return f, c.pos, nil
}

// --------------------------------------------------------------------------
// Cursor
// --------------------------------------------------------------------------

// cursor walks a buffer during Check and Parse. pos always points to the next
// unread byte.
type cursor struct {
	buf []byte
	pos int
}

// decode validates the frame at the current position. If build is true the
// frame is also constructed and returned, otherwise the returned frame is nil.
func (c *cursor) decode(depth int, build bool) (Frame, error) {
	if depth > MaxDepth {
		return nil, protocolErrorf("nesting depth exceeds limit %d", MaxDepth)
	}

	tag, err := c.readByte()
	if err != nil {
		return nil, err
	}

	switch Tag(tag) {
	case TagSimple, TagError:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if err := validateText(line); err != nil {
			return nil, err
		}
		if !build {
			return nil, nil
		}
		if Tag(tag) == TagSimple {
			return Simple(line), nil
		}
		return Error(line), nil

	case TagInteger:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		n, err := parseDecimal(line)
		if err != nil {
			return nil, err
		}
		if !build {
			return nil, nil
		}
		return Integer(n), nil

	case TagBulk:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		n, null, err := parseLength(line, MaxBulkLen)
		if err != nil {
			return nil, err
		}
		if null {
			return nullOrNil(build), nil
		}
		payload, err := c.readPayload(n)
		if err != nil {
			return nil, err
		}
		if !build {
			return nil, nil
		}
		// the buffer is reused by the caller -> copy
		value := make([]byte, n)
		copy(value, payload)
		return Bulk(value), nil

	case TagArray:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		n, null, err := parseLength(line, MaxArrayLen)
		if err != nil {
			return nil, err
		}
		if null {
			return nullOrNil(build), nil
		}

		var elems Array
		if build {
			elems = make(Array, 0, n)
		}
		for i := 0; i < n; i++ {
			elem, err := c.decode(depth+1, build)
			if err != nil {
				return nil, err
			}
			if build {
				elems = append(elems, elem)
			}
		}
		if !build {
			return nil, nil
		}
		return elems, nil

	default:
		return nil, protocolErrorf("invalid frame type byte %q", tag)
	}
}

// readByte returns the next byte or ErrIncomplete
func (c *cursor) readByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, ErrIncomplete
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// readLine returns the bytes up to the next CRLF (exclusive) and moves the
// cursor past the terminator.
func (c *cursor) readLine() ([]byte, error) {
	rest := c.buf[c.pos:]
	idx := bytes.Index(rest, crlf)
	if idx < 0 {
		// a valid line would have ended within the first MaxLineLen+2 bytes
		if len(rest) >= MaxLineLen+len(crlf) {
			return nil, protocolErrorf("line length exceeds limit %d", MaxLineLen)
		}
		return nil, ErrIncomplete
	}
	if idx > MaxLineLen {
		return nil, protocolErrorf("line length exceeds limit %d", MaxLineLen)
	}
	c.pos += idx + len(crlf)
	return rest[:idx], nil
}

// readPayload returns the next n bytes and moves past the CRLF that must follow them
func (c *cursor) readPayload(n int) ([]byte, error) {
	if len(c.buf)-c.pos < n+len(crlf) {
		return nil, ErrIncomplete
	}
	payload := c.buf[c.pos : c.pos+n]
	if !bytes.Equal(c.buf[c.pos+n:c.pos+n+len(crlf)], crlf) {
		return nil, protocolErrorf("bulk payload of length %d is not terminated by CRLF", n)
	}
	c.pos += n + len(crlf)
	return payload, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func nullOrNil(build bool) Frame {
	if build {
		return Null{}
	}
	return nil
}

// validateText checks the payload of a Simple or Error frame
func validateText(line []byte) error {
	if bytes.IndexByte(line, '\r') >= 0 || bytes.IndexByte(line, '\n') >= 0 {
		return protocolErrorf("text frame contains CR or LF")
	}
	if !utf8.Valid(line) {
		return protocolErrorf("text frame is not valid UTF-8")
	}
	return nil
}

// parseDecimal parses an unsigned ASCII decimal number. Signs, spaces and
// empty input are rejected.
func parseDecimal(line []byte) (uint64, error) {
	if len(line) == 0 {
		return 0, protocolErrorf("empty decimal")
	}

	var n uint64
	for _, b := range line {
		if b < '0' || b > '9' {
			return 0, protocolErrorf("invalid decimal %q", line)
		}
		d := uint64(b - '0')
		if n > (math.MaxUint64-d)/10 {
			return 0, protocolErrorf("decimal %q overflows uint64", line)
		}
		n = n*10 + d
	}
	return n, nil
}

// parseLength parses the length line of a bulk or array frame.
// "-1" is reported as null, every other negative number is an error.
func parseLength(line []byte, limit int) (int, bool, error) {
	if len(line) == 2 && line[0] == '-' && line[1] == '1' {
		return 0, true, nil
	}

	n, err := parseDecimal(line)
	if err != nil {
		return 0, false, err
	}
	if n > uint64(limit) {
		return 0, false, protocolErrorf("length %d exceeds limit %d", n, limit)
	}
	return int(n), false, nil
}
