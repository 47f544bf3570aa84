// ABOUTME: HTTP server wiring for the dayboard dashboard APIs
// ABOUTME: Builds the feature services, registers routes, runs the listener

// Package server assembles the feature modules over the configured
// storage layers and exposes them as the JSON API the dashboard client
// consumes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dayboard/dayboard/internal/briefing"
	"github.com/dayboard/dayboard/internal/config"
	"github.com/dayboard/dayboard/internal/deadlines"
	"github.com/dayboard/dayboard/internal/reconcile"
	"github.com/dayboard/dayboard/internal/saves"
	"github.com/dayboard/dayboard/internal/storage"
	"github.com/dayboard/dayboard/internal/workout"

	"tailscale.com/tsnet"
)

// Server is the dashboard API server.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	provider  *briefing.Provider
	archive   *briefing.Archive
	deadlines *deadlines.Service
	workout   *workout.Service
	saves     *saves.Service
	layout    storage.DocumentStore

	tsnetServer *tsnet.Server
	now         func() time.Time
}

// New builds the server and all feature services from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	st := cfg.Storage

	var archive *briefing.Archive
	if st.ArchivePath != "" {
		var err error
		archive, err = briefing.NewArchive(st.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("opening archive: %w", err)
		}
	}

	provider := briefing.NewProvider(st, archive, logger)
	source := storage.NewSourceAdapter(st.SourcePath, logger)

	deadlineRec := reconcile.New(
		storage.NewMemoryAdapter(),
		storage.NewCacheAdapter(st.CacheDir, "deadlines", logger),
		logger,
	)
	habitRec := reconcile.New(
		storage.NewMemoryAdapter(),
		storage.NewCacheAdapter(st.CacheDir, "habits", logger),
		logger,
	)

	cycle, err := workout.LoadCycle(cfg.Workout.CyclePath)
	if err != nil {
		return nil, fmt.Errorf("loading workout cycle: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger.With("component", "server"),
		provider:  provider,
		archive:   archive,
		deadlines: deadlines.New(provider, deadlineRec, source, logger),
		workout:   workout.New(storage.NewCacheAdapter(st.CacheDir, "workout", logger), habitRec, cycle, logger),
		saves:     saves.New(storage.NewCacheAdapter(st.CacheDir, "saves", logger), st.NotesPath, logger),
		layout:    storage.NewCacheAdapter(st.CacheDir, "layout", logger),
		now:       time.Now,
	}
	return s, nil
}

// Routes returns the server's HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/briefing", s.handleBriefing)
	mux.HandleFunc("/api/archive", s.handleArchive)
	mux.HandleFunc("/api/deadlines", s.handleListDeadlines)
	mux.HandleFunc("/api/deadlines/complete", s.handleCompleteDeadline)
	mux.HandleFunc("/api/workout/advance", s.handleWorkout)
	mux.HandleFunc("/api/saves", s.handleSaves)
	mux.HandleFunc("/api/layout", s.handleLayout)

	return s.logRequests(mux)
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.listener(ctx)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.close()
			return fmt.Errorf("http server: %w", err)
		}
	}

	s.close()
	return nil
}

func (s *Server) listener(ctx context.Context) (net.Listener, error) {
	if s.cfg.Tailscale.Enabled {
		return s.setupTailscaleListener(ctx)
	}
	ln, err := net.Listen("tcp", s.cfg.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.cfg.Server.HTTPAddr, err)
	}
	return ln, nil
}

func (s *Server) close() {
	if s.tsnetServer != nil {
		if err := s.tsnetServer.Close(); err != nil {
			s.logger.Warn("tailscale shutdown", "error", err)
		}
	}
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			s.logger.Warn("archive close", "error", err)
		}
	}
}

// logRequests wraps the handler with debug-level request logging.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
