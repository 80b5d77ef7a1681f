package socketfeed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigureValidatesURL(t *testing.T) {
	t.Parallel()

	p := New(TypeName, 1).(*Plugin)

	require.Error(t, p.Configure(map[string]string{"url": "://bad"}))
	require.Error(t, p.Configure(map[string]string{"url": "no-scheme"}))
	require.NoError(t, p.Configure(map[string]string{"url": "ws://feed.local:8081/socket.io"}))
}

func TestConsumeUpdatesContent(t *testing.T) {
	t.Parallel()

	p := New(TypeName, 2).(*Plugin)
	require.Equal(t, "waiting for feed", p.Content())

	p.consume("ticker: 42")
	require.Equal(t, "ticker: 42", p.Content())

	p.consume()
	require.Equal(t, "ticker: 42", p.Content(), "empty event keeps last payload")
}

func TestEnableWithoutURLStaysIdle(t *testing.T) {
	t.Parallel()

	p := New(TypeName, 3).(*Plugin)
	p.Enable()
	defer p.Disable()

	require.True(t, p.Active())
	require.Nil(t, p.io)
}
