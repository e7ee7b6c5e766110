package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/scribe/component"
)

// THelper provides testing.T integration for component setup.
type THelper struct {
	t   *testing.T
	ctx context.Context
}

// T wraps a testing.T to provide helper methods.
func T(t *testing.T) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts components in order and registers a cleanup that stops them
// in reverse order when the test ends.
func (h *THelper) Setup(components ...component.Component) {
	h.t.Helper()
	for i, c := range components {
		if err := c.Start(h.ctx); err != nil {
			h.stop(components[:i])
			h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
		}
	}
	h.t.Cleanup(func() { h.stop(components) })
}

func (h *THelper) stop(components []component.Component) {
	for i := len(components) - 1; i >= 0; i-- {
		if err := components[i].Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", components[i].Name(), err)
		}
	}
}

// Reset resets a component to its initial state.
func (h *THelper) Reset(c TestComponent) {
	h.t.Helper()
	if err := c.Reset(h.ctx); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
	}
}
