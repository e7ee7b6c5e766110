package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/scribe/provider"
)

// ProviderComponent manages an outbound client built at Start. Health maps
// IsAvailable: an unreachable backend reports degraded, not unhealthy,
// since requests that do not need it can still be served.
type ProviderComponent[T provider.Provider] struct {
	name  string
	build func(ctx context.Context) (T, error)
	desc  Description

	mu      sync.RWMutex
	p       T
	started bool
}

var _ Component = (*ProviderComponent[provider.Provider])(nil)

// NewProviderComponent creates a component that calls build on Start.
func NewProviderComponent[T provider.Provider](name string, build func(ctx context.Context) (T, error)) *ProviderComponent[T] {
	return &ProviderComponent[T]{name: name, build: build}
}

// WithDescription sets the startup summary entry.
func (c *ProviderComponent[T]) WithDescription(d Description) *ProviderComponent[T] {
	c.desc = d
	return c
}

// Name returns the component name.
func (c *ProviderComponent[T]) Name() string { return c.name }

// Get returns the provider. It is the zero value before Start.
func (c *ProviderComponent[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.p
}

// Start builds the provider.
func (c *ProviderComponent[T]) Start(ctx context.Context) error {
	p, err := c.build(ctx)
	if err != nil {
		return fmt.Errorf("%s start: %w", c.name, err)
	}
	c.mu.Lock()
	c.p, c.started = p, true
	c.mu.Unlock()
	return nil
}

// Stop closes the provider if it holds resources.
func (c *ProviderComponent[T]) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	c.started = false
	return provider.CloseIfCloseable(ctx, c.p)
}

// Health reports the provider's availability.
func (c *ProviderComponent[T]) Health(ctx context.Context) Health {
	c.mu.RLock()
	p, started := c.p, c.started
	c.mu.RUnlock()

	if !started {
		return Health{Name: c.name, Status: StatusUnhealthy, Message: "not started"}
	}
	if !p.IsAvailable(ctx) {
		return Health{Name: c.name, Status: StatusDegraded, Message: p.Name() + " unavailable"}
	}
	return Health{Name: c.name, Status: StatusHealthy}
}

// Describe returns the startup summary entry.
func (c *ProviderComponent[T]) Describe() Description {
	d := c.desc
	if d.Name == "" {
		d.Name = c.name
	}
	return d
}
