package testutil

import (
	"context"

	"github.com/kbukum/scribe/component"
)

// TestComponent extends component.Component with a Reset used between test
// cases to return the component to its initial state.
type TestComponent interface {
	component.Component

	Reset(ctx context.Context) error
}
