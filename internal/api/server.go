package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldsense/fieldsense/internal/infrastructure/config"
	"github.com/fieldsense/fieldsense/internal/infrastructure/logging"
	"github.com/fieldsense/fieldsense/internal/query"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// QueryService is the read surface the handlers expose over HTTP.
type QueryService interface {
	GetStatus(ctx context.Context, device string) (int, error)
	GetLastReading(ctx context.Context, device string) (map[string]any, error)
	GetHistory(ctx context.Context, device, field, start string) (query.History, error)
}

// HealthChecker is an infrastructure client that can verify its own
// connectivity. Both the store and broker clients satisfy it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DeviceCounter reports how many devices the liveness tracker has seen.
type DeviceCounter interface {
	Devices() int
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Queries QueryService
	Store   HealthChecker // optional: reported by /api/health
	Broker  HealthChecker // optional: reported by /api/health
	Devices DeviceCounter // optional: reported by /api/health
	Version string
}

// Server is the HTTP API server for FieldSense.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	queries QueryService
	store   HealthChecker
	broker  HealthChecker
	devices DeviceCounter
	version string
	server  *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, query service)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Queries == nil {
		return nil, fmt.Errorf("query service is required")
	}

	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		queries: deps.Queries,
		store:   deps.Store,
		broker:  deps.Broker,
		devices: deps.Devices,
		version: deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; listen failures after
// startup are logged, not returned. The server is stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("api server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server failed", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the HTTP server, allowing in-flight
// requests to complete within the shutdown timeout.
func (s *Server) Close() error {
	if s == nil || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}
