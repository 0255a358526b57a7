package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"yieldScope/internal/model"
	"yieldScope/internal/retry"
)

const maxBodyBytes = 32 << 20

// Source delivers raw pool snapshots.
type Source interface {
	Pools(ctx context.Context) ([]model.RawPool, error)
}

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	URL          string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// HTTPSource fetches pools from an upstream /pools endpoint.
type HTTPSource struct {
	cfg    HTTPConfig
	client *http.Client
	logger *zap.Logger
}

// NewHTTPSource builds an HTTPSource. A nil client gets one with cfg.Timeout.
func NewHTTPSource(cfg HTTPConfig, client *http.Client, logger *zap.Logger) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPSource{cfg: cfg, client: client, logger: logger}
}

// Pools fetches and decodes the upstream feed, retrying transport and status errors.
func (s *HTTPSource) Pools(ctx context.Context) ([]model.RawPool, error) {
	if s.cfg.URL == "" {
		return nil, fmt.Errorf("pools url is required")
	}

	var body []byte
	err := retry.Do(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		body, err = s.fetch(ctx)
		if err != nil {
			s.logger.Warn("fetch pools failed", zap.String("url", s.cfg.URL), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pools: %w", err)
	}

	pools, err := DecodePools(body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("pools fetched", zap.String("url", s.cfg.URL), zap.Int("pools", len(pools)))
	return pools, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return body, nil
}

// StatusError reports a non-2xx upstream status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Code)
}

// FileSource reads pools from a JSON or JSONL file.
type FileSource struct {
	Path string
}

// Pools reads and decodes the file on every call.
func (s *FileSource) Pools(ctx context.Context) ([]model.RawPool, error) {
	if s == nil || s.Path == "" {
		return nil, fmt.Errorf("input path is required")
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return DecodePools(data)
}
