package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"papermill/internal/config"
	"papermill/internal/jobs"
	"papermill/internal/logging"
	"papermill/internal/staging"
)

// Submitter hands new conversion jobs to the background pool.
type Submitter interface {
	Submit(ctx context.Context, originalFilename, convertedFilename string, kind jobs.Kind) (*jobs.Job, error)
}

// Server exposes the conversion HTTP API.
type Server struct {
	bind      string
	maxUpload int64
	store     *jobs.Store
	area      *staging.Area
	submitter Submitter
	logger    *slog.Logger
	engine    *gin.Engine

	listener net.Listener
	server   *http.Server
}

// New builds the API server and its route table.
func New(cfg *config.Config, store *jobs.Store, area *staging.Area, submitter Submitter, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUploadBytes()

	srv := &Server{
		bind:      bind,
		maxUpload: cfg.MaxUploadBytes(),
		store:     store,
		area:      area,
		submitter: submitter,
		logger:    logging.NewComponentLogger(logger, "api"),
		engine:    engine,
	}

	engine.Use(srv.requestID(), srv.requestLogger(), gin.Recovery())
	engine.POST("/upload", srv.limitBody(), srv.handleUpload)
	engine.GET("/status/:id", srv.handleStatus)
	engine.GET("/download/:id", srv.handleDownload)
	engine.GET("/conversions", srv.handleList)
	engine.GET("/healthz", srv.handleHealthz)

	srv.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the router for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr reports the bound listener address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the listener and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}
