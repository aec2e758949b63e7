package frame

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleFrames covers every variant, including nested arrays and binary bulk
// payloads that contain the terminator.
func sampleFrames() map[string]Frame {
	return map[string]Frame{
		"simple":         Simple("OK"),
		"empty simple":   Simple(""),
		"utf8 simple":    Simple("grüße"),
		"error":          Error("ERR unknown command 'foo'"),
		"integer zero":   Integer(0),
		"integer":        Integer(42),
		"integer max":    Integer(math.MaxUint64),
		"bulk":           Bulk("world"),
		"empty bulk":     Bulk(""),
		"binary bulk":    Bulk([]byte{0x00, '\r', '\n', 0xff, '$'}),
		"null":           Null{},
		"empty array":    Array{},
		"command array":  Array{Bulk("SET"), Bulk("hello"), Bulk("world")},
		"mixed array":    Array{Simple("a"), Integer(7), Null{}, Error("e"), Bulk("b")},
		"nested array":   Array{Array{Bulk("x")}, Array{}, Array{Array{Integer(1)}}},
		"large bulk":     Bulk(bytes.Repeat([]byte("abcdefgh"), 2048)),
		"array of nulls": Array{Null{}, Null{}},
	}
}

func mustMarshal(t testing.TB, f Frame) []byte {
	t.Helper()
	data, err := Marshal(f)
	require.NoError(t, err)
	return data
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		frame    Frame
		expected string
	}{
		{"simple", Simple("OK"), "+OK\r\n"},
		{"error", Error("ERR boom"), "-ERR boom\r\n"},
		{"integer", Integer(1000), ":1000\r\n"},
		{"integer zero", Integer(0), ":0\r\n"},
		{"bulk", Bulk("world"), "$5\r\nworld\r\n"},
		{"empty bulk", Bulk(""), "$0\r\n\r\n"},
		{"null", Null{}, "$-1\r\n"},
		{"empty array", Array{}, "*0\r\n"},
		{
			name:     "get command",
			frame:    Array{Bulk("GET"), Bulk("hello")},
			expected: "*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n",
		},
		{
			name:     "nested array",
			frame:    Array{Integer(1), Array{Simple("a")}},
			expected: "*2\r\n:1\r\n*1\r\n+a\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tt.frame))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestEncodeRejectsInvalidFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"simple with CRLF", Simple("O\r\nK")},
		{"simple with LF", Simple("a\nb")},
		{"error with CR", Error("a\rb")},
		{"invalid utf8", Simple(string([]byte{0xff, 0xfe}))},
		{"nested invalid simple", Array{Bulk("ok"), Array{Simple("bad\r\n")}}},
		{"nil frame", nil},
		{"nil inside array", Array{Bulk("a"), nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Encode(&buf, tt.frame)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrProtocol))
			assert.Zero(t, buf.Len(), "nothing must be written for invalid frames")
		})
	}
}

func TestEncodeRejectsTooDeepNesting(t *testing.T) {
	var f Frame = Bulk("leaf")
	for i := 0; i <= MaxDepth; i++ {
		f = Array{f}
	}

	_, err := Marshal(f)
	assert.ErrorIs(t, err, ErrProtocol)
}

// --------------------------------------------------------------------------
// Round trip
// --------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	for name, f := range sampleFrames() {
		t.Run(name, func(t *testing.T) {
			data := mustMarshal(t, f)

			n, err := Check(data)
			require.NoError(t, err)
			assert.Equal(t, len(data), n)

			parsed, m, err := Parse(data)
			require.NoError(t, err)
			assert.Equal(t, len(data), m)
			assert.Equal(t, f, parsed)
		})
	}
}

// --------------------------------------------------------------------------
// Check
// --------------------------------------------------------------------------

func TestCheckIncompleteForEveryPrefix(t *testing.T) {
	for name, f := range sampleFrames() {
		t.Run(name, func(t *testing.T) {
			data := mustMarshal(t, f)
			for i := 0; i < len(data); i++ {
				_, err := Check(data[:i])
				require.ErrorIs(t, err, ErrIncomplete, "prefix of length %d", i)

				_, _, err = Parse(data[:i])
				require.ErrorIs(t, err, ErrIncomplete, "prefix of length %d", i)
			}
		})
	}
}

func TestCheckConsumesExactlyOneFrame(t *testing.T) {
	first := mustMarshal(t, Array{Bulk("SET"), Bulk("k"), Bulk("v")})
	second := mustMarshal(t, Simple("OK"))
	buf := append(append([]byte{}, first...), second...)

	n, err := Check(buf)
	require.NoError(t, err)
	assert.Equal(t, len(first), n)

	f, m, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, len(first), m)
	assert.Equal(t, Array{Bulk("SET"), Bulk("k"), Bulk("v")}, f)

	f, m, err = Parse(buf[n:])
	require.NoError(t, err)
	assert.Equal(t, len(second), m)
	assert.Equal(t, Simple("OK"), f)
}

func TestCheckDoesNotModifyBuffer(t *testing.T) {
	buf := mustMarshal(t, Array{Bulk("GET"), Bulk("hello")})
	snapshot := append([]byte{}, buf...)

	_, err := Check(buf)
	require.NoError(t, err)
	_, err = Check(buf[:len(buf)-3])
	require.ErrorIs(t, err, ErrIncomplete)

	assert.Equal(t, snapshot, buf)
}

func TestCheckProtocolErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown tag", "?foo\r\n"},
		{"lowercase tag", "x\r\n"},
		{"invalid utf8 simple", "+\xff\xfe\r\n"},
		{"invalid utf8 error", "-\xc3\x28\r\n"},
		{"lone LF in simple", "+a\nb\r\n"},
		{"lone CR in simple", "+a\rb\r\n"},
		{"negative integer", ":-5\r\n"},
		{"signed integer", ":+5\r\n"},
		{"empty integer", ":\r\n"},
		{"integer overflow", ":18446744073709551616\r\n"},
		{"non decimal integer", ":12a\r\n"},
		{"non decimal bulk length", "$abc\r\n"},
		{"empty bulk length", "$\r\nfoo\r\n"},
		{"negative bulk length", "$-2\r\n"},
		{"bulk length with space", "$ 3\r\nfoo\r\n"},
		{"bulk too long", "$3\r\nfoobar\r\n"},
		{"bulk exceeds limit", "$536870913\r\n"},
		{"non decimal array count", "*x\r\n"},
		{"negative array count", "*-3\r\n"},
		{"array exceeds limit", "*1048577\r\n"},
		{"bad element in array", "*2\r\n$3\r\nGET\r\n!oops\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrProtocol)
			assert.NotErrorIs(t, err, ErrIncomplete)

			var protoErr *ProtocolError
			assert.True(t, errors.As(err, &protoErr))

			_, _, err = Parse([]byte(tt.input))
			assert.ErrorIs(t, err, ErrProtocol)
		})
	}
}

func TestCheckRejectsTooDeepNesting(t *testing.T) {
	input := strings.Repeat("*1\r\n", MaxDepth+1) + ":1\r\n"
	_, err := Check([]byte(input))
	assert.ErrorIs(t, err, ErrProtocol)

	// exactly at the limit is fine
	input = strings.Repeat("*1\r\n", MaxDepth) + ":1\r\n"
	n, err := Check([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, len(input), n)
}

func TestCheckRejectsOverlongLines(t *testing.T) {
	// no terminator in sight, but already longer than any valid line
	input := "+" + strings.Repeat("a", MaxLineLen+2)
	_, err := Check([]byte(input))
	assert.ErrorIs(t, err, ErrProtocol)

	// a shorter unterminated line is just incomplete
	input = "+" + strings.Repeat("a", 100)
	_, err = Check([]byte(input))
	assert.ErrorIs(t, err, ErrIncomplete)
}

// --------------------------------------------------------------------------
// Parse
// --------------------------------------------------------------------------

func TestParseNullEncodings(t *testing.T) {
	for _, input := range []string{"$-1\r\n", "*-1\r\n"} {
		f, n, err := Parse([]byte(input))
		require.NoError(t, err)
		assert.Equal(t, len(input), n)
		assert.Equal(t, Null{}, f)
	}
}

func TestParseCopiesBulkPayload(t *testing.T) {
	buf := []byte("$5\r\nhello\r\n")

	f, _, err := Parse(buf)
	require.NoError(t, err)

	// the connection reuses its buffer, the frame must stay intact
	copy(buf, "XXXXXXXXXXX")
	assert.Equal(t, Bulk("hello"), f)
}

func TestFrameString(t *testing.T) {
	f := Array{Bulk("SET"), Simple("OK"), Integer(3), Null{}, Error("bad")}
	assert.Equal(t, `Array[Bulk("SET"), Simple("OK"), Integer(3), Null, Error("bad")]`, f.String())
}

func TestNullUsesBulkTag(t *testing.T) {
	assert.Equal(t, TagBulk, Null{}.Tag())
	assert.Equal(t, TagArray, Array{}.Tag())
	assert.Equal(t, TagSimple, Simple("").Tag())
}
