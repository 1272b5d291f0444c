// Package server exposes the fsview facade over HTTP and streams change
// events to websocket clients.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/TFMV/fsview/internal/app"
	"github.com/TFMV/fsview/internal/config"
	"github.com/TFMV/fsview/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP router and its dependencies.
type Server struct {
	router  *gin.Engine
	facade  *app.Facade
	metrics *metrics.Metrics
	logger  *zap.Logger
	config  config.ServerConfig
}

// New creates a server for facade. m may be nil.
func New(cfg config.ServerConfig, facade *app.Facade, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(requestMetrics(m))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	s := &Server{
		router:  router,
		facade:  facade,
		metrics: m,
		logger:  logger,
		config:  cfg,
	}
	s.routes()
	return s
}

// corsConfig allows the given origins, or every origin when the list is
// empty or holds "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Content-Length", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
		AllowWebSockets: true,
		CustomSchemas:   []string{"tauri"},
		MaxAge:          12 * time.Hour,
	}
	if allowAnyOrigin(origins) {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func allowAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (s *Server) routes() {
	r := s.router
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")

	// Tree
	api.GET("/tree/list", s.listTree)
	api.GET("/tree/project", s.projectTree)

	// Watches
	api.GET("/watch", s.listWatches)
	api.POST("/watch", s.startWatch)
	api.DELETE("/watch", s.stopWatch)
	api.DELETE("/watch/all", s.stopAllWatches)

	// Files
	api.GET("/files/read", s.readFile)
	api.POST("/files/write", s.writeFile)
	api.GET("/files/exists", s.fileExists)
	api.GET("/files/info", s.fileInfo)
	api.POST("/files/create", s.createFile)
	api.POST("/files/rename", s.renamePath)
	api.POST("/files/reveal", s.reveal)
	api.DELETE("/files", s.deletePath)
	api.POST("/dirs/create", s.createDirectory)

	// Settings
	api.GET("/settings", s.loadSettings)
	api.PUT("/settings", s.saveSettings)
	api.GET("/settings/path", s.settingsPath)

	// Events
	api.GET("/events", s.streamEvents)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
