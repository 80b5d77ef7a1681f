package boot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequence_RunsStatesInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	seq := Sequence{
		{Name: "init", Run: func(context.Context) error { order = append(order, "init"); return nil }},
		{Name: "restore", Run: func(context.Context) error { order = append(order, "restore"); return nil }},
		{Name: "serve", Run: func(context.Context) error { order = append(order, "serve"); return nil }},
	}

	require.NoError(t, seq.Run(context.Background()))
	require.Equal(t, []string{"init", "restore", "serve"}, order)
}

func TestSequence_FailingStateHaltsSequence(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var reached bool
	seq := Sequence{
		{Name: "init", Run: func(context.Context) error { return boom }},
		{Name: "restore", Run: func(context.Context) error { reached = true; return nil }},
	}

	err := seq.Run(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "boot state init")
	require.False(t, reached)
}

func TestSequence_CancelledContextStopsBetweenStates(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var count int
	seq := Sequence{
		{Name: "first", Run: func(context.Context) error { count++; cancel(); return nil }},
		{Name: "second", Run: func(context.Context) error { count++; return nil }},
	}

	require.ErrorIs(t, seq.Run(ctx), context.Canceled)
	require.Equal(t, 1, count)
}

func TestSequence_EmptySequenceSucceeds(t *testing.T) {
	t.Parallel()

	require.NoError(t, Sequence{}.Run(context.Background()))
}
