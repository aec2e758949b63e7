package util

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	wrapped := WrapString(text)

	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(wrapped))

	// a single word longer than Wrap is not split
	long := strings.Repeat("x", Wrap+10)
	assert.Equal(t, long, WrapString(long))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, splitList(" a:1 ,, b:2 ,"))
	assert.Nil(t, splitList(""))
}

func TestGetClientConfigFromFlags(t *testing.T) {
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	SetupRPCClientFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--transport-endpoints", "10.0.0.1:6379,10.0.0.2:6379",
		"--transport-retries", "5",
		"--breaker-max-failures", "9",
	}))
	require.NoError(t, viper.BindPFlags(cmd.PersistentFlags()))

	conf := GetClientConfig()
	assert.Equal(t, []string{"10.0.0.1:6379", "10.0.0.2:6379"}, conf.Transport.Endpoints)
	assert.Equal(t, 5, conf.RetryCount)
	assert.Equal(t, uint32(9), conf.Breaker.MaxFailures)
	assert.Equal(t, uint32(1), conf.Breaker.MaxRequests)
	assert.True(t, conf.Transport.TCPNoDelay)
}

func TestGetTransport(t *testing.T) {
	t.Cleanup(viper.Reset)

	for _, name := range []string{"tcp", "unix"} {
		viper.Set("transport", name)
		tr, err := GetTransport()
		require.NoError(t, err)
		assert.Equal(t, name, tr.GetName())
	}

	viper.Set("transport", "http")
	_, err := GetTransport()
	assert.Error(t, err)
}
