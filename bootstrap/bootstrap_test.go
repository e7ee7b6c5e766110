package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/logger"
)

type testConfig struct {
	config.ServiceConfig
}

// recorder collects lifecycle events across components and hooks.
type recorder struct {
	events []string
}

func (r *recorder) add(e string) { r.events = append(r.events, e) }

type mockComponent struct {
	name     string
	rec      *recorder
	startErr error
	stopErr  error
	health   component.Health
	desc     *component.Description
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	m.rec.add("start:" + m.name)
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	m.rec.add("stop:" + m.name)
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) component.Health {
	if m.health.Name == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

type describedComponent struct {
	*mockComponent
}

func (d describedComponent) Describe() component.Description { return *d.desc }

func (d describedComponent) Routes() []component.Route {
	return []component.Route{{Method: "POST", Path: "/api/notes", Handler: "Handler.Create"}}
}

func newTestApp(t *testing.T, opts ...Option) (*App[*testConfig], *bytes.Buffer) {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "scribe", Version: "1.0.0"}}
	var out bytes.Buffer
	opts = append([]Option{WithLogger(logger.Nop()), WithSummaryOutput(&out)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, &out
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	if app.Name != "scribe" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got environment %q", app.Cfg.Environment)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Fatal("expected registry, logger and summary")
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("unexpected default timeout %v", app.gracefulTimeout)
	}
}

func TestNewAppValidationError(t *testing.T) {
	cfg := &testConfig{}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestNewAppInitializesLoggerFromConfig(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "scribe"}}
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Logger != logger.GetGlobalLogger() {
		t.Error("expected app logger to be the global logger")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, _ := newTestApp(t, WithGracefulTimeout(time.Second))
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s, got %v", app.gracefulTimeout)
	}
}

func TestRunStartsAndStopsInOrder(t *testing.T) {
	app, _ := newTestApp(t)
	rec := &recorder{}
	if err := app.RegisterComponents(
		&mockComponent{name: "database", rec: rec},
		&mockComponent{name: "storage", rec: rec},
		&mockComponent{name: "http-server", rec: rec},
	); err != nil {
		t.Fatalf("register: %v", err)
	}
	app.OnStart(func(context.Context) error { rec.add("onStart"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		rec.add("configure:" + a.Cfg.Name)
		return nil
	})
	app.OnReady(func(context.Context) error { rec.add("onReady"); return nil })
	app.OnStop(func(context.Context) error { rec.add("onStop"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"start:database", "start:storage", "start:http-server",
		"onStart", "configure:scribe", "onReady",
		"onStop", "stop:http-server", "stop:storage", "stop:database",
	}
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v\nwant     %v", rec.events, want)
	}
}

func TestStartFailureStopsStartedComponents(t *testing.T) {
	app, _ := newTestApp(t)
	rec := &recorder{}
	_ = app.RegisterComponents(
		&mockComponent{name: "database", rec: rec},
		&mockComponent{name: "storage", rec: rec, startErr: errors.New("bucket missing")},
		&mockComponent{name: "http-server", rec: rec},
	)

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bucket missing") {
		t.Fatalf("expected start error, got %v", err)
	}

	want := "start:database,start:storage,stop:database"
	if got := strings.Join(rec.events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestConfigureFailureAborts(t *testing.T) {
	app, _ := newTestApp(t)
	rec := &recorder{}
	_ = app.RegisterComponent(&mockComponent{name: "database", rec: rec})
	app.OnConfigure(func(context.Context, *App[*testConfig]) error {
		return errors.New("wiring failed")
	})

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "configuration failed") {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if rec.events[len(rec.events)-1] != "stop:database" {
		t.Errorf("expected database stopped, got %v", rec.events)
	}
}

func TestDuplicateComponent(t *testing.T) {
	app, _ := newTestApp(t)
	rec := &recorder{}
	if err := app.RegisterComponents(&mockComponent{name: "db", rec: rec}, &mockComponent{name: "db", rec: rec}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestRunTask(t *testing.T) {
	app, _ := newTestApp(t, WithoutSummary())
	rec := &recorder{}
	_ = app.RegisterComponent(&mockComponent{name: "database", rec: rec})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		rec.add("task")
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if got := strings.Join(rec.events, ","); got != "start:database,task,stop:database" {
		t.Errorf("events = %s", got)
	}
}

func TestRunTaskErrorTakesPrecedence(t *testing.T) {
	app, _ := newTestApp(t, WithoutSummary())
	rec := &recorder{}
	_ = app.RegisterComponent(&mockComponent{name: "database", rec: rec, stopErr: errors.New("close failed")})

	taskErr := errors.New("seed failed")
	err := app.RunTask(context.Background(), func(context.Context) error { return taskErr })
	if !errors.Is(err, taskErr) {
		t.Fatalf("expected task error, got %v", err)
	}
}

func TestRunTaskReturnsStopError(t *testing.T) {
	app, _ := newTestApp(t, WithoutSummary())
	rec := &recorder{}
	_ = app.RegisterComponent(&mockComponent{name: "database", rec: rec, stopErr: errors.New("close failed")})

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "close failed") {
		t.Fatalf("expected stop error, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app, _ := newTestApp(t)
	rec := &recorder{}
	_ = app.RegisterComponents(
		&mockComponent{name: "whisper", rec: rec, health: component.Health{Name: "whisper", Status: component.StatusDegraded}},
		&mockComponent{name: "database", rec: rec},
	)
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("degraded should not fail readiness: %v", err)
	}

	_ = app.RegisterComponent(&mockComponent{
		name: "storage", rec: rec,
		health: component.Health{Name: "storage", Status: component.StatusUnhealthy, Message: "no bucket"},
	})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "storage(no bucket)") {
		t.Errorf("expected unhealthy storage, got %v", err)
	}
}

func TestSummaryDisplay(t *testing.T) {
	app, out := newTestApp(t)
	rec := &recorder{}
	_ = app.RegisterComponents(
		describedComponent{&mockComponent{
			name: "http-server", rec: rec,
			desc: &component.Description{Name: "HTTP Server", Type: "server", Details: "0.0.0.0", Port: 3001},
		}},
		&mockComponent{name: "whisper", rec: rec, health: component.Health{Name: "whisper", Status: component.StatusDegraded, Message: "whisper unavailable"}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := out.String()
	for _, want := range []string{
		"scribe 1.0.0 started",
		"HTTP Server [server]: 0.0.0.0 (:3001)",
		"POST    /api/notes → Handler.Create",
		"Health (degraded)",
		"whisper degraded: whisper unavailable",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestSummaryEmptyRegistry(t *testing.T) {
	var out bytes.Buffer
	NewSummary("scribe", "").Display(context.Background(), &out, component.NewRegistry())
	if !strings.Contains(out.String(), "scribe dev started") || !strings.Contains(out.String(), "No components registered") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
}
