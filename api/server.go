// Package api serves the gateway's REST surface: broadcast submission and
// read-only chain queries backed by the chain store.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Server provides the gateway's HTTP endpoints.
type Server struct {
	logger     zerolog.Logger
	server     *http.Server
	gateway    Submitter
	chainStore ChainReader
	database   Pinger
	node       NodeProber
}

// NewServer creates a new Server instance.
func NewServer(
	logger zerolog.Logger,
	port int,
	gateway Submitter,
	chainStore ChainReader,
	database Pinger,
	node NodeProber,
) *Server {
	s := &Server{
		logger:     logger.With().Str("component", "api_server").Logger(),
		gateway:    gateway,
		chainStore: chainStore,
		database:   database,
		node:       node,
	}

	mux := s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start starts the HTTP server, failing fast when the port cannot be bound.
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("api server is nil")
	}

	startupChan := make(chan error, 1)

	go func() {
		// Verify the port is available before committing to serve.
		ln, err := net.Listen("tcp", s.server.Addr)
		if err != nil {
			startupChan <- fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
			return
		}
		startupChan <- nil

		err = s.server.Serve(ln)
		switch err {
		case nil:
			s.logger.Info().Msg("api server stopped normally")
		case http.ErrServerClosed:
			s.logger.Info().Msg("api server closed gracefully")
		default:
			s.logger.Error().Err(err).Msg("api server error")
		}
	}()

	select {
	case err := <-startupChan:
		if err != nil {
			return err
		}
		s.logger.Info().Str("addr", s.server.Addr).Msg("api server started")
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("server startup timeout")
	}
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
