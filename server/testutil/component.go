package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/server/endpoint"
	"github.com/kbukum/scribe/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Component serves a fully configured server.Server (middleware stack and
// health endpoints included) from an httptest.Server on a random port.
type Component struct {
	srv *server.Server
	ts  atomic.Pointer[httptest.Server]
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// NewComponent builds the server. checker backs /health/ready and may be
// omitted.
func NewComponent(checker ...endpoint.HealthChecker) *Component {
	cfg := server.Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	srv := server.New(cfg, logger.Nop())

	var hc endpoint.HealthChecker
	if len(checker) > 0 {
		hc = checker[0]
	}
	srv.ApplyDefaults("scribe-test", nil, hc)
	return &Component{srv: srv}
}

// GinEngine is where tests mount their routes.
func (c *Component) GinEngine() *gin.Engine { return c.srv.GinEngine() }

// Server returns the wrapped server.
func (c *Component) Server() *server.Server { return c.srv }

// BaseURL is empty until Start.
func (c *Component) BaseURL() string {
	if ts := c.ts.Load(); ts != nil {
		return ts.URL
	}
	return ""
}

func (c *Component) Name() string { return "server-test" }

func (c *Component) Start(context.Context) error {
	ts := httptest.NewUnstartedServer(c.srv.Handler())
	if !c.ts.CompareAndSwap(nil, ts) {
		return errors.New("server-test: already started")
	}
	ts.Start()
	return nil
}

func (c *Component) Stop(context.Context) error {
	if ts := c.ts.Swap(nil); ts != nil {
		ts.Close()
	}
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	if c.ts.Load() == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset replaces the listener, dropping open client connections. Routes
// on the engine survive.
func (c *Component) Reset(context.Context) error {
	old := c.ts.Load()
	if old == nil {
		return errors.New("server-test: not started")
	}
	old.Close()
	c.ts.Store(httptest.NewServer(c.srv.Handler()))
	return nil
}

// GetJSON issues GET path against the running server and decodes a JSON
// body into out when out is non-nil. It returns the status code.
func (c *Component) GetJSON(t *testing.T, path string, out any) int {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, c.BaseURL()+path, http.NoBody)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("GET %s: decode: %v", path, err)
		}
	}
	return resp.StatusCode
}
