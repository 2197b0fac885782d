// Package server exposes the Reconboard HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lotworks/reconboard/internal/analytics"
	"github.com/lotworks/reconboard/internal/config"
	"github.com/lotworks/reconboard/internal/notify"
	"github.com/lotworks/reconboard/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server wires the API handlers to their collaborators. Every dependency is
// constructed by the caller and injected here; nothing is process-global.
type Server struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       *config.Config
	notifier  *notify.Dispatcher
	coord     *workflow.Coordinator
	analytics *analytics.Service
	metrics   *metrics
	router    *gin.Engine
}

// Opts holds the collaborators for a Server.
type Opts struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Config    *config.Config
	Notifier  *notify.Dispatcher
	Coord     *workflow.Coordinator
	Analytics *analytics.Service
}

// New builds a Server and its router.
func New(opts Opts) (*Server, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("server: db is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("server: config is required")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	s := &Server{
		db:        opts.DB,
		log:       opts.Log,
		cfg:       opts.Config,
		notifier:  opts.Notifier,
		coord:     opts.Coord,
		analytics: opts.Analytics,
		metrics:   newMetrics(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes(router)
	s.router = router
	return s, nil
}

// Handler returns the HTTP handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server. It blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	s.log.Info("server: listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
