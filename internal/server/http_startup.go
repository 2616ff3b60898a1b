package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobfinder/internal/extract"
	"jobfinder/internal/observability"
	"jobfinder/internal/providers"
	"jobfinder/internal/search"
)

// Start starts the HTTP server with all configured components
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	if err := s.buildSearchPipeline(om); err != nil {
		return err
	}
	defer s.closePipeline()

	httpServer, err := s.setupHTTPServer(om)
	if err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig)
	if obsConfig.ServiceVersion == "" {
		obsConfig.ServiceVersion = s.Version
	}

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// buildSearchPipeline wires extraction, the provider adapters and the
// orchestrator. Called once per Start, before the listener comes up.
func (s *Server) buildSearchPipeline(om *observability.ObservabilityManager) error {
	vocab := extract.NewVocabulary()
	extractCfg := s.AppConfig.Extract
	if extractCfg.VocabDir != "" {
		if err := vocab.LoadDir(extractCfg.VocabDir); err != nil {
			return fmt.Errorf("failed to load vocabulary from %s: %w", extractCfg.VocabDir, err)
		}
		if extractCfg.WatchVocab {
			if err := vocab.Watch(extractCfg.VocabDir, s.Logger); err != nil {
				return fmt.Errorf("failed to watch vocabulary dir: %w", err)
			}
		}
	}
	s.cleanup = append(s.cleanup, vocab.Close)

	extractor := extract.NewFieldExtractor(
		extractCfg,
		vocab,
		extract.NewTextExtractor(),
		extract.NewProseTagger(),
		s.Logger,
	)
	extractor.OnTitleStrategy = func(strategy string) {
		om.RecordResumeParsed(context.Background(), true, strategy)
	}

	adapters := providers.BuildAdapters(s.AppConfig.Providers, s.Logger)

	// Manual queries skip the web-scrape adapter; resume searches use all.
	manualAdapters := make([]providers.Adapter, 0, len(adapters))
	for _, a := range adapters {
		if a.Name() != "DuckDuckGo" {
			manualAdapters = append(manualAdapters, a)
		}
	}

	s.adapters = adapters
	s.orchestrator = search.NewOrchestrator(
		s.AppConfig.Search,
		extractor,
		adapters,
		manualAdapters,
		search.NewAggregator(s.AppConfig.Search.NormalizeDedupeKeys),
		s.Logger,
		om,
	)

	return nil
}

// closePipeline releases pipeline resources such as vocabulary watchers
func (s *Server) closePipeline() {
	for _, fn := range s.cleanup {
		if err := fn(); err != nil {
			s.Logger.LogError(err, "Failed to close pipeline resource")
		}
	}
	s.cleanup = nil
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) (*http.Server, error) {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(mux)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}, nil
}

// displayServerInfo logs the effective server configuration
func (s *Server) displayServerInfo() {
	s.Logger.Info("Server configuration",
		"host", s.Host,
		"port", s.Port,
		"version", s.Version,
		"auth_enabled", len(s.APIKeys) > 0,
		"rate_limit_enabled", s.RateLimit != nil && s.RateLimit.Enabled,
		"max_request_size", s.MaxRequestSize,
		"providers", len(s.adapters))
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Wait for either a signal or server error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	// Create a context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Clean up rate limiter if enabled
	s.cleanupRateLimiter()

	// Attempt graceful shutdown of HTTP server
	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
