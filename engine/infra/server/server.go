// Package server assembles the HTTP API: routing, middleware and
// lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskweave/taskweave/engine/infra/store"
	"github.com/taskweave/taskweave/engine/workflow"
	wfrouter "github.com/taskweave/taskweave/engine/workflow/router"
	"github.com/taskweave/taskweave/engine/workflow/schedule"
	schedulerouter "github.com/taskweave/taskweave/engine/workflow/schedule/router"
	"github.com/taskweave/taskweave/pkg/config"
	"github.com/taskweave/taskweave/pkg/logger"
)

const (
	httpReadTimeout       = 15 * time.Second
	httpWriteTimeout      = 15 * time.Second
	httpIdleTimeout       = 60 * time.Second
	serverShutdownTimeout = 5 * time.Second
)

// Server hosts the REST API over a workflow store.
type Server struct {
	cfg        *config.Config
	db         *store.DB
	repo       workflow.Repository
	engine     *gin.Engine
	httpServer *http.Server
}

// New assembles a server from its dependencies.
func New(ctx context.Context, cfg *config.Config, db *store.DB) *Server {
	repo := workflow.NewPostgresRepository(db)
	s := &Server{cfg: cfg, db: db, repo: repo}
	s.engine = s.buildRouter(ctx)
	return s
}

// Repo exposes the workflow repository for embedding callers.
func (s *Server) Repo() workflow.Repository {
	return s.repo
}

func (s *Server) buildRouter(ctx context.Context) *gin.Engine {
	if s.cfg.Runtime.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(logger.FromContext(ctx)))
	engine.GET("/healthz", s.healthz)
	apiBase := engine.Group("/api/v1")
	wfrouter.Register(apiBase, s.repo)
	schedulerouter.Register(apiBase, schedule.NewManager(s.repo))
	return engine
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Pool().Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Handler returns the assembled gin engine, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
