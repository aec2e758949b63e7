package command

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/rKV/lib/frame"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFrame(t *testing.T) {
	tests := []struct {
		name string
		in   frame.Frame
		want *Command
	}{
		{
			name: "get",
			in:   frame.Array{frame.Bulk("GET"), frame.Bulk("hello")},
			want: &Command{Type: CommandTGet, Name: "GET", Key: "hello"},
		},
		{
			name: "set",
			in:   frame.Array{frame.Bulk("SET"), frame.Bulk("hello"), frame.Bulk("world")},
			want: &Command{Type: CommandTSet, Name: "SET", Key: "hello", Value: []byte("world")},
		},
		{
			name: "lower case name",
			in:   frame.Array{frame.Bulk("get"), frame.Bulk("k")},
			want: &Command{Type: CommandTGet, Name: "get", Key: "k"},
		},
		{
			name: "simple strings",
			in:   frame.Array{frame.Simple("SeT"), frame.Simple("k"), frame.Simple("v")},
			want: &Command{Type: CommandTSet, Name: "SeT", Key: "k", Value: []byte("v")},
		},
		{
			name: "unknown",
			in:   frame.Array{frame.Bulk("PING")},
			want: &Command{Type: CommandTUnknown, Name: "PING"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromFrame(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		in   frame.Frame
		err  error
	}{
		{"not an array", frame.Bulk("GET"), ErrInvalidCommand},
		{"empty array", frame.Array{}, ErrInvalidCommand},
		{"integer element", frame.Array{frame.Bulk("GET"), frame.Integer(1)}, ErrInvalidCommand},
		{"null element", frame.Array{frame.Bulk("GET"), frame.Null{}}, ErrInvalidCommand},
		{"get without key", frame.Array{frame.Bulk("GET")}, ErrWrongNumberOfArgs},
		{"get with two keys", frame.Array{frame.Bulk("GET"), frame.Bulk("a"), frame.Bulk("b")}, ErrWrongNumberOfArgs},
		{"set without value", frame.Array{frame.Bulk("SET"), frame.Bulk("a")}, ErrWrongNumberOfArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFrame(tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestToFrameRoundTrip(t *testing.T) {
	for _, cmd := range []*Command{NewGet("hello"), NewSet("hello", []byte("world"))} {
		decoded, err := FromFrame(cmd.ToFrame())
		require.NoError(t, err)
		assert.Equal(t, cmd, decoded)
	}
}

func TestToFrameEncoding(t *testing.T) {
	b, err := frame.Marshal(NewSet("hello", []byte("world")).ToFrame())
	require.NoError(t, err)
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$5\r\nhello\r\n$5\r\nworld\r\n", string(b))
}

func TestApplyGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockIStore(ctrl)

	s.EXPECT().Get("hello").Return([]byte("world"), true, nil)
	s.EXPECT().Get("missing").Return(nil, false, nil)

	res, err := NewGet("hello").Apply(s)
	require.NoError(t, err)
	assert.Equal(t, frame.Bulk("world"), res)

	res, err = NewGet("missing").Apply(s)
	require.NoError(t, err)
	assert.Equal(t, frame.Null{}, res)
}

func TestApplySet(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockIStore(ctrl)

	s.EXPECT().Set("hello", []byte("world")).Return(nil)

	res, err := NewSet("hello", []byte("world")).Apply(s)
	require.NoError(t, err)
	assert.Equal(t, frame.Simple("OK"), res)
}

func TestApplyStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockIStore(ctrl)

	s.EXPECT().
		Set(gomock.Any(), gomock.Any()).
		Return(store.NewError(store.RetCInternalError, "disk on fire\r\nreally"))
	s.EXPECT().
		Get(gomock.Any()).
		Return(nil, false, errors.New("boom"))

	res, err := NewSet("k", []byte("v")).Apply(s)
	require.NoError(t, err)
	require.IsType(t, frame.Error(""), res)
	assert.Contains(t, string(res.(frame.Error)), "ERR ")
	assert.NotContains(t, string(res.(frame.Error)), "\r")

	res, err = NewGet("k").Apply(s)
	require.NoError(t, err)
	assert.Equal(t, frame.Error("ERR boom"), res)

	// the error frame must be encodable
	_, err = frame.Marshal(res)
	assert.NoError(t, err)
}

func TestApplyUnknownDoesNotTouchStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockIStore(ctrl) // no expectations, any call fails the test

	cmd, err := FromFrame(frame.Array{frame.Bulk("FLUSHALL")})
	require.NoError(t, err)

	res, err := cmd.Apply(s)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, frame.Error("ERR unknown command 'FLUSHALL'"), ErrorReply(err))
}

func TestWrongArityReply(t *testing.T) {
	_, err := FromFrame(frame.Array{frame.Bulk("get")})
	require.Error(t, err)
	assert.Equal(t, frame.Error("ERR wrong number of arguments for 'get' command"), ErrorReply(err))
}
