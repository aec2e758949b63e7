package frame

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Writer is the sink frames are encoded into. *bufio.Writer and
// *bytes.Buffer both satisfy it.
type Writer interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
}

// Encode writes the wire representation of f to w. Simple and Error frames
// containing CR or LF (also nested inside arrays) are rejected with a
// *ProtocolError before anything is written, since they would corrupt the
// framing of the stream.
func Encode(w Writer, f Frame) error {
	if err := validate(f, 0); err != nil {
		return err
	}
	return encode(w, f)
}

// Marshal returns the wire representation of f.
func Marshal(f Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// validate checks that f can be encoded without corrupting the stream
func validate(f Frame, depth int) error {
	if depth > MaxDepth {
		return protocolErrorf("nesting depth exceeds limit %d", MaxDepth)
	}

	switch v := f.(type) {
	case Simple:
		return validateTextString(string(v))
	case Error:
		return validateTextString(string(v))
	case Integer, Bulk, Null:
		return nil
	case Array:
		for _, elem := range v {
			if err := validate(elem, depth+1); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return protocolErrorf("can not encode nil frame")
	default:
		return protocolErrorf("unsupported frame type %T", f)
	}
}

// validateTextString applies the same rules to outgoing text frames that the
// decoder applies to incoming ones
func validateTextString(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return protocolErrorf("text frame contains CR or LF")
	}
	if len(text) > MaxLineLen {
		return protocolErrorf("line length exceeds limit %d", MaxLineLen)
	}
	if !utf8.ValidString(text) {
		return protocolErrorf("text frame is not valid UTF-8")
	}
	return nil
}

// encode writes f, which must have passed validate
func encode(w Writer, f Frame) error {
	switch v := f.(type) {
	case Simple:
		return writeText(w, TagSimple, string(v))

	case Error:
		return writeText(w, TagError, string(v))

	case Integer:
		if err := w.WriteByte(byte(TagInteger)); err != nil {
			return err
		}
		return writeDecimal(w, uint64(v))

	case Bulk:
		if err := w.WriteByte(byte(TagBulk)); err != nil {
			return err
		}
		if err := writeDecimal(w, uint64(len(v))); err != nil {
			return err
		}
		if _, err := w.Write(v); err != nil {
			return err
		}
		_, err := w.WriteString(terminator)
		return err

	case Null:
		_, err := w.WriteString("$-1" + terminator)
		return err

	case Array:
		if err := w.WriteByte(byte(TagArray)); err != nil {
			return err
		}
		if err := writeDecimal(w, uint64(len(v))); err != nil {
			return err
		}
		for _, elem := range v {
			if err := encode(w, elem); err != nil {
				return err
			}
		}
		return nil

	default:
		return protocolErrorf("unsupported frame type %T", f)
	}
}

// writeText writes a tagged text line (Simple and Error)
func writeText(w Writer, tag Tag, text string) error {
	if err := w.WriteByte(byte(tag)); err != nil {
		return err
	}
	if _, err := w.WriteString(text); err != nil {
		return err
	}
	_, err := w.WriteString(terminator)
	return err
}

// writeDecimal writes n in decimal followed by the terminator.
// Used for integers as well as for bulk and array lengths.
func writeDecimal(w Writer, n uint64) error {
	var buf [24]byte
	b := strconv.AppendUint(buf[:0], n, 10)
	b = append(b, terminator...)
	_, err := w.Write(b)
	return err
}
