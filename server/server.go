package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/server/endpoint"
	"github.com/kbukum/scribe/server/middleware"
)

const shutdownGrace = 5 * time.Second

// Server serves a Gin engine over h2c, so HTTP/1.1 and cleartext HTTP/2
// clients share one port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	cfg        Config
	log        *logger.Logger

	mu    sync.Mutex
	stack []middleware.Middleware
	ln    net.Listener
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// New builds a server with a bare engine. Middleware is added with Use or
// ApplyMiddleware.
func New(cfg Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
			ReadTimeout:       seconds(cfg.ReadTimeout),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      seconds(cfg.WriteTimeout),
			IdleTimeout:       seconds(cfg.IdleTimeout),
		},
		engine: engine,
		cfg:    cfg,
		log:    log.WithComponent(componentName),
	}
}

// GinEngine is where routes are registered.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Use appends middleware; the first added runs outermost.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.mu.Lock()
	s.stack = append(s.stack, mw...)
	s.mu.Unlock()
}

// Handler is the engine behind the middleware stack and the h2c upgrade.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	wrap := middleware.Chain(s.stack...)
	s.mu.Unlock()
	return h2c.NewHandler(wrap(s.engine), &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	})
}

// Start returns once the port is bound; requests are served in the
// background until Stop.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.httpServer.Handler = s.Handler()

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err))
		}
	}()
	s.log.Info("HTTP server started", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop drains in-flight requests for up to five seconds.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err))
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.mu.Lock()
	s.ln = nil
	s.mu.Unlock()
	s.log.Info("HTTP server stopped")
	return nil
}

// Addr is the bound address while running, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return s.httpServer.Addr
	}
	return s.ln.Addr().String()
}

// ApplyMiddleware installs, outermost first: recovery, request id, tracing
// and metrics, access log, CORS and the body size limit. metrics may be nil.
func (s *Server) ApplyMiddleware(serviceName string, metrics *observability.Metrics) {
	s.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.Telemetry(serviceName, metrics),
		middleware.RequestLogger(s.log),
		middleware.CORS(&s.cfg.CORS),
		middleware.BodySizeLimit(s.cfg.MaxBodySize),
	)
}

// RegisterDefaultEndpoints mounts /health, /health/ready and /info.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health())
	s.engine.GET("/health/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
}

// ApplyDefaults is ApplyMiddleware followed by RegisterDefaultEndpoints.
func (s *Server) ApplyDefaults(serviceName string, metrics *observability.Metrics, checker endpoint.HealthChecker) {
	s.ApplyMiddleware(serviceName, metrics)
	s.RegisterDefaultEndpoints(serviceName, checker)
}
