package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/logger"
)

// App drives the lifecycle of a service or a one-shot task over a typed
// config C.
//
//	a, err := bootstrap.NewApp(cfg)
//	a.RegisterComponents(db, store, srv)
//	a.OnReady(func(ctx context.Context) error { return warmUp(ctx) })
//	err = a.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	summaryOut      io.Writer
	quiet           bool

	onConfigure []func(ctx context.Context, app *App[C]) error
	onStart     []Hook
	onReady     []Hook
	onStop      []Hook
}

// NewApp applies defaults to cfg, validates it and sets up the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	a := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Summary:         NewSummary(base.Name, base.Version),
		gracefulTimeout: 15 * time.Second,
		summaryOut:      os.Stdout,
		quiet:           o.quiet,
	}
	if o.gracefulTimeout != nil {
		a.gracefulTimeout = *o.gracefulTimeout
	}
	if o.summaryOut != nil {
		a.summaryOut = o.summaryOut
	}
	if o.logger != nil {
		a.Logger = o.logger
		logger.SetGlobalLogger(o.logger)
	} else {
		a.Logger = logger.Init(base.Logging, base.Name)
	}
	a.Components.WithLogger(a.Logger)
	return a, nil
}

// RegisterComponent adds one component to the registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// RegisterComponents adds components in start order.
func (a *App[C]) RegisterComponents(cs ...component.Component) error {
	for _, c := range cs {
		if err := a.Components.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// OnConfigure registers wiring that needs started components. It runs after
// the OnStart hooks.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck fails when any component reports unhealthy. Degraded
// components pass.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusUnhealthy {
			continue
		}
		if h.Message != "" {
			bad = append(bad, h.Name+"("+h.Message+")")
		} else {
			bad = append(bad, h.Name)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("unhealthy components: [%s]", strings.Join(bad, " "))
	}
	return nil
}

// Run starts everything, blocks until SIGINT, SIGTERM or ctx is done, then
// shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask starts everything, runs task with a signal-aware context and
// shuts down when it returns. The task error wins over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if taskErr != nil {
		a.Logger.Error("Task failed", logger.Fields(logger.FieldError, taskErr.Error()))
	}
	if err := a.stop(); err != nil && taskErr == nil {
		return err
	}
	return taskErr
}

type phase struct {
	failure string
	run     func(context.Context) error
}

// startup runs the start phases in order. When one fails, whatever already
// started is stopped before the error is returned.
func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	phases := []phase{
		{"initialization failed", a.Components.StartAll},
		{"onStart hook failed", hooks(a.onStart).run},
		{"configuration failed", a.configure},
		{"", a.warnUnready},
		{"onReady hook failed", hooks(a.onReady).run},
	}
	for _, p := range phases {
		if err := p.run(ctx); err != nil {
			return a.abort(fmt.Errorf("%s: %w", p.failure, err))
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	if !a.quiet {
		a.Summary.Display(ctx, a.summaryOut, a.Components)
	}
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// warnUnready logs a failed ready check. Startup continues so a service can
// come up while a dependency recovers.
func (a *App[C]) warnUnready(ctx context.Context) error {
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	return nil
}

func (a *App[C]) abort(err error) error {
	return errors.Join(err, a.stop())
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx is done. It returns the
// signal, or nil on cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the application for callers that manage their own
// lifecycle instead of calling Run.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

// stop runs the OnStop hooks and then stops components in reverse, all
// under the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := hooks(a.onStop).run(ctx); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
