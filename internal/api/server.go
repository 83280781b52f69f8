// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/models"
	submitapplication "maritime-intake/internal/workers/application/submit-application"

	"github.com/gin-gonic/gin"
)

// Check probes one dependency for the readiness endpoint.
type Check func(ctx context.Context) error

// Deps are the collaborators the HTTP surface talks to.
type Deps struct {
	Submitter submitapplication.Submitter
	Catalog   *models.Catalog
	Checks    map[string]Check
	Backend   string
}

type Server struct {
	config  *Config
	engine  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
	stop    chan struct{}
	logger  logger.Logger
}

func NewServer(config *Config, deps Deps, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	if deps.Catalog == nil {
		deps.Catalog = models.DefaultCatalog()
	}

	limiter := NewRateLimiter(config.RateLimit, config.RateBurst, log)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(CORS(config.AllowedOrigins))

	api := &API{
		config:    config,
		submitter: deps.Submitter,
		catalog:   deps.Catalog,
		checks:    deps.Checks,
		backend:   deps.Backend,
		logger:    log,
	}
	registerRoutes(engine, api, limiter)

	return &Server{
		config:  config,
		engine:  engine,
		limiter: limiter,
		stop:    make(chan struct{}),
		logger:  log,
		http: &http.Server{
			Addr:              config.Address,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.limiter.StartCleanup(time.Minute, s.stop)

	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.config.Address,
	})

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	return s.http.Shutdown(ctx)
}
