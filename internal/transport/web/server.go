package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/config"
	"github.com/EgorLis/infdot-upload/internal/logger"
	"github.com/EgorLis/infdot-upload/internal/transport/web/v1/health"
	"github.com/EgorLis/infdot-upload/internal/transport/web/v1/upload"
)

type Server struct {
	log    zerolog.Logger
	server *http.Server
}

func New(log zerolog.Logger, cfg *config.Config, deps Deps) *Server {
	healthHandler := &health.Handler{
		Log:     logger.Component(log, "health"),
		DB:      deps.DB,
		Cache:   deps.Cache,
		Storage: deps.Storage,
	}
	uploadHandler := &upload.Handler{
		Log:      logger.Component(log, "upload"),
		Service:  deps.Uploader,
		MaxBytes: cfg.UploadMaxBytes,
	}

	srv := &http.Server{
		Addr:              listenAddr(cfg.AppPort),
		Handler:           newRouter(healthHandler, uploadHandler, deps.Metrics, log),
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, log: log}
}

// "8080" → ":8080"
func listenAddr(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func (ws *Server) Handler() http.Handler { return ws.server.Handler }

// Run блокируется до остановки сервера
func (ws *Server) Run() error {
	ws.log.Info().Str("addr", ws.server.Addr).Msg("started")
	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Error().Err(err).Msg("forced to shutdown")
	}
	ws.log.Info().Msg("exited gracefully")
}
