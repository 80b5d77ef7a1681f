package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestContentRendersDefaultLayout(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	p := newWithClock(TypeName, 3, fixedClock(at))

	require.Equal(t, "Fri 14.03.2025 09:26", p.Content())
}

func TestConfigureChangesLayout(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	p := newWithClock(TypeName, 3, fixedClock(at))

	require.NoError(t, p.Configure(map[string]string{"layout": "15:04:05"}))
	require.Equal(t, "09:26:53", p.Content())
}

func TestConfigureIgnoresEmptyLayout(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	p := newWithClock(TypeName, 3, fixedClock(at))

	require.NoError(t, p.Configure(map[string]string{"layout": ""}))
	require.Equal(t, "Fri 14.03.2025 09:26", p.Content())
}
