// Package proxy serves the pool passthrough and ranked strategies over HTTP.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"yieldScope/internal/model"
	"yieldScope/internal/observability"
)

// Config holds proxy settings.
type Config struct {
	ListenAddr      string
	UpstreamURL     string
	CacheTTL        time.Duration
	UpstreamTimeout time.Duration
	DefaultLimit    int
	MaxLimit        int
}

// Enricher fills missing token fields before ranking.
type Enricher interface {
	Enrich(ctx context.Context, pools []model.RawPool) []model.RawPool
}

// Server routes /pools, /strategies, /health and /metrics.
type Server struct {
	cfg      Config
	router   *mux.Router
	client   *http.Client
	cache    *ristretto.Cache
	enricher Enricher
	logger   *zap.Logger
}

// NewServer builds a Server. A nil client gets one bounded by UpstreamTimeout.
func NewServer(cfg Config, client *http.Client, enricher Enricher, logger *zap.Logger) (*Server, error) {
	if cfg.UpstreamURL == "" {
		return nil, fmt.Errorf("upstream url is required")
	}
	cfg.UpstreamURL = strings.TrimRight(cfg.UpstreamURL, "/")
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 15 * time.Second
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.UpstreamTimeout}
	}

	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		client:   client,
		enricher: enricher,
		logger:   logger,
	}

	if cfg.CacheTTL > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e4,
			MaxCost:     64 << 20,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("create response cache: %w", err)
		}
		s.cache = cache
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/pools", s.handlePools).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/strategies", s.handleStrategies).Methods(http.MethodGet, http.MethodOptions)
	s.router.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)

	s.router.Use(s.corsMiddleware)
	s.router.Use(s.loggingMiddleware)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting proxy", zap.String("addr", addr), zap.String("upstream", s.cfg.UpstreamURL))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down proxy")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the response cache.
func (s *Server) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}
