package transport

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/ValentinKolb/rKV/lib/frame"
	"io"
	"net"
	"time"
)

// DefaultBufferSize is the initial capacity of the read buffer of a connection
const DefaultBufferSize = 4 * 1024

// ErrConnectionReset is returned by ReadFrame when the peer closed the
// connection in the middle of a frame
var ErrConnectionReset = errors.New("connection reset by peer")

// Connection sends and receives frames over a net.Conn.
//
// Incoming bytes are collected in a single growable buffer until a complete
// frame is available. Outgoing frames are encoded into a buffered writer which
// is flushed once per frame.
//
// A Connection is not safe for concurrent use. Each connection is owned by
// exactly one goroutine.
type Connection struct {
	conn    net.Conn
	writer  *bufio.Writer
	buf     []byte // len(buf) bytes are filled, cap(buf) is the current capacity
	readErr error  // error returned by a read that also delivered data
}

// NewConnection wraps a net.Conn. If bufferSize is not positive,
// DefaultBufferSize is used as initial read buffer capacity.
func NewConnection(conn net.Conn, bufferSize int) *Connection {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Connection{
		conn:   conn,
		writer: bufio.NewWriterSize(conn, bufferSize),
		buf:    make([]byte, 0, bufferSize),
	}
}

// --------------------------------------------------------------------------
// Reading
// --------------------------------------------------------------------------

// ReadFrame returns the next frame received on the connection.
//
// If the buffer already holds a complete frame, it is returned without any
// I/O. Otherwise more data is read from the socket until a frame is complete.
//
// It returns io.EOF if the peer closed the connection cleanly between two
// frames and ErrConnectionReset if the peer closed it inside a frame.
// Protocol errors are returned as is (see frame.ErrProtocol). The connection
// must not be used after an error.
func (c *Connection) ReadFrame() (frame.Frame, error) {
	for {
		// try to parse a frame from the buffered data
		f, err := c.parseFrame()
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, frame.ErrIncomplete) {
			return nil, err
		}

		// buffer is full but the frame is not complete, so grow it
		if len(c.buf) == cap(c.buf) {
			c.grow()
		}

		// read more data, keep an error that came along with data for later
		var n int
		if c.readErr != nil {
			err = c.readErr
		} else {
			n, err = c.conn.Read(c.buf[len(c.buf):cap(c.buf)])
			c.buf = c.buf[:len(c.buf)+n]
		}
		if n > 0 {
			if err != nil {
				c.readErr = err
			}
			continue
		}
		if err == nil {
			continue
		}

		// Case EOF: clean close only if no partial frame is left
		if errors.Is(err, io.EOF) {
			if len(c.buf) == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: %d bytes of incomplete frame", ErrConnectionReset, len(c.buf))
		}
		return nil, err
	}
}

// parseFrame decodes one frame from the buffer and drops the consumed bytes
func (c *Connection) parseFrame() (frame.Frame, error) {
	if len(c.buf) == 0 {
		return nil, frame.ErrIncomplete
	}

	n, err := frame.Check(c.buf)
	if err != nil {
		return nil, err
	}

	f, _, err := frame.Parse(c.buf[:n])
	if err != nil {
		return nil, err
	}

	// move the remaining bytes to the front of the buffer
	rest := copy(c.buf, c.buf[n:])
	c.buf = c.buf[:rest]
	return f, nil
}

// grow doubles the capacity of the read buffer
func (c *Connection) grow() {
	newBuf := make([]byte, len(c.buf), 2*cap(c.buf))
	copy(newBuf, c.buf)
	c.buf = newBuf
}

// Buffered returns the number of received bytes not yet returned as frame
func (c *Connection) Buffered() int {
	return len(c.buf)
}

// --------------------------------------------------------------------------
// Writing
// --------------------------------------------------------------------------

// WriteFrame encodes the frame and flushes it to the socket.
// Invalid frames are rejected before anything is written.
func (c *Connection) WriteFrame(f frame.Frame) error {
	if err := frame.Encode(c.writer, f); err != nil {
		return err
	}
	return c.writer.Flush()
}

// --------------------------------------------------------------------------
// net.Conn delegation
// --------------------------------------------------------------------------

func (c *Connection) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *Connection) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *Connection) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
func (c *Connection) RemoteAddr() net.Addr               { return c.conn.RemoteAddr() }
func (c *Connection) LocalAddr() net.Addr                { return c.conn.LocalAddr() }

// Close closes the underlying socket. Unflushed data is discarded.
func (c *Connection) Close() error {
	return c.conn.Close()
}
