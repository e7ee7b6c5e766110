package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

// OnStart registers hooks that run once components have started, before
// the OnConfigure callbacks.
func (a *App[C]) OnStart(h ...Hook) {
	a.onStart = append(a.onStart, h...)
}

// OnReady registers hooks that run after the ready check, right before Run
// blocks or RunTask calls its task.
func (a *App[C]) OnReady(h ...Hook) {
	a.onReady = append(a.onReady, h...)
}

// OnStop registers hooks that run on shutdown before components stop.
func (a *App[C]) OnStop(h ...Hook) {
	a.onStop = append(a.onStop, h...)
}

type hooks []Hook

// run calls each hook in order and stops at the first error.
func (hs hooks) run(ctx context.Context) error {
	for i, h := range hs {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d: %w", i, err)
		}
	}
	return nil
}
