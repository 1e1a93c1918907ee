// Package http serves a read-only view of a running classifier.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rejectlearn/ml"
)

type Server struct {
	server *http.Server
	logger *zap.SugaredLogger
}

type ServerConfig struct {
	Port    int
	Timeout time.Duration
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:    8080,
		Timeout: 10 * time.Second,
	}
}

// NewServer exposes classifier on config.Port.
func NewServer(config ServerConfig, classifier *ml.Classifier, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	handler := Chain(
		RecoveryMiddleware(logger),
		LoggerMiddleware(logger),
	)(NewMux(classifier, logger))

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      handler,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Infof("starting status server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down status server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}
