// Package boot runs the device startup as a linear sequence of named
// states. Each state runs to completion on the calling goroutine and
// hands over to the next; a failing state halts the sequence.
package boot

import (
	"context"
	"fmt"

	"github.com/vk/pixelgridgo/internal/ctxlog"
)

// State is one step of the boot sequence.
type State struct {
	// Name identifies the state in logs.
	Name string

	// Run performs the state's work. Returning an error halts the
	// sequence.
	Run func(ctx context.Context) error
}

// Sequence is an ordered list of boot states.
type Sequence []State

// Run executes the states in order. It stops at the first error or when
// ctx is cancelled between states, and reports which state failed.
func (s Sequence) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for _, state := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info("Entering boot state.", "state", state.Name)
		if err := state.Run(ctx); err != nil {
			logger.Error("Boot state failed.", "state", state.Name, "error", err)
			return fmt.Errorf("boot state %s: %w", state.Name, err)
		}
	}
	return nil
}
