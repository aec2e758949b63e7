package common

import (
	"testing"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnknownCommandPolicy(t *testing.T) {
	p, err := ParseUnknownCommandPolicy("REPLY")
	require.NoError(t, err)
	assert.Equal(t, UnknownCommandReply, p)

	p, err = ParseUnknownCommandPolicy("")
	require.NoError(t, err)
	assert.Equal(t, UnknownCommandClose, p)

	_, err = ParseUnknownCommandPolicy("ignore")
	assert.Error(t, err)
}

func TestServerConfigString(t *testing.T) {
	c := DefaultServerConfig()
	c.Shards = 8
	c.MetricsEndpoint = ":9100"

	s := c.String()
	assert.Contains(t, s, "127.0.0.1:6379")
	assert.Contains(t, s, "sharded")
	assert.Contains(t, s, ":9100")
	assert.Contains(t, s, "close")
}

func TestClientConfigString(t *testing.T) {
	c := DefaultClientConfig()
	c.Transport.Endpoints = []string{"a:1", "b:2"}

	s := c.String()
	assert.Contains(t, s, "a:1")
	assert.Contains(t, s, "b:2")
	assert.Contains(t, s, "CIRCUIT BREAKER")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, parseLogLevel("debug"))
	assert.Equal(t, logger.WARNING, parseLogLevel("WARN"))
	assert.Equal(t, logger.ERROR, parseLogLevel("error"))
	assert.Panics(t, func() { parseLogLevel("loud") })
}

func TestIsValidLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		assert.True(t, IsValidLogLevel(level), level)
		assert.NotPanics(t, func() { parseLogLevel(level) })
	}
	assert.False(t, IsValidLogLevel("loud"))
	assert.False(t, IsValidLogLevel(""))
}
