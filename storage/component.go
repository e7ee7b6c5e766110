package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/logger"
)

const healthCheckKey = ".health"

// Component wraps Storage and implements component.Component for lifecycle management.
type Component struct {
	cfg     Config
	log     *logger.Logger
	storage Storage
	audio   *AudioStore
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

// Storage returns the underlying Storage, or nil if not started.
func (c *Component) Storage() Storage { return c.storage }

// Audio returns the audio store, or nil if not started.
func (c *Component) Audio() *AudioStore { return c.audio }

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start initializes the storage backend.
func (c *Component) Start(_ context.Context) error {
	s, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	c.audio = NewAudioStore(s, c.cfg)
	return nil
}

// Stop releases the backend.
func (c *Component) Stop(_ context.Context) error {
	var err error
	if closer, ok := c.storage.(io.Closer); ok {
		err = closer.Close()
	}
	c.storage = nil
	c.audio = nil
	return err
}

// IsAvailable reports whether the backend is initialized.
func (c *Component) IsAvailable(_ context.Context) bool {
	return c.storage != nil
}

// Health checks the backend with an existence check.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.storage == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	if _, err := c.storage.Exists(ctx, healthCheckKey); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the bootstrap display.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s bucket=%s", c.cfg.Provider, c.cfg.Bucket)
	if c.cfg.Endpoint != "" {
		details += " endpoint=" + c.cfg.Endpoint
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}
