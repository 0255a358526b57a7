package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"yieldScope/internal/feed"
	"yieldScope/internal/observability"
	"yieldScope/internal/yield"
)

const maxUpstreamBody = 32 << 20

type upstreamResponse struct {
	status      int
	contentType string
	body        []byte
}

func (u upstreamResponse) ok() bool {
	return u.status >= 200 && u.status < 300
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePools forwards to the upstream /pools, preserving the query string.
func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	resp, err := s.fetchPools(r.Context(), r.URL.RawQuery)
	if err != nil {
		s.logger.Error("upstream pools failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "upstream unavailable")
		return
	}

	if resp.contentType != "" {
		w.Header().Set("Content-Type", resp.contentType)
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}

// handleStrategies ranks the upstream pools and returns the top entries.
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	if limit <= 0 || limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	resp, err := s.fetchPools(r.Context(), "")
	if err != nil {
		s.logger.Error("upstream pools failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "upstream unavailable")
		return
	}
	if !resp.ok() {
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("upstream status %d", resp.status))
		return
	}

	raws, err := feed.DecodePools(resp.body)
	if err != nil {
		s.logger.Warn("decode upstream pools", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "upstream returned an unrecognized payload")
		return
	}
	if s.enricher != nil {
		raws = s.enricher.Enrich(r.Context(), raws)
	}

	s.writeJSON(w, http.StatusOK, yield.Recommend(raws, limit))
}

// fetchPools returns the upstream /pools response, served from cache when a
// 2xx response for the same query is still fresh.
func (s *Server) fetchPools(ctx context.Context, rawQuery string) (upstreamResponse, error) {
	key := "pools?" + rawQuery
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			observability.RecordCacheLookup(true)
			return v.(upstreamResponse), nil
		}
		observability.RecordCacheLookup(false)
	}

	url := s.cfg.UpstreamURL + "/pools"
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	start := time.Now()
	resp, err := s.get(ctx, url)
	observability.RecordUpstream("pools", time.Since(start).Seconds(), err)
	if err != nil {
		return upstreamResponse{}, err
	}

	if s.cache != nil && resp.ok() {
		s.cache.SetWithTTL(key, resp, int64(len(resp.body))+1, s.cfg.CacheTTL)
		s.cache.Wait()
	}
	return resp, nil
}

func (s *Server) get(ctx context.Context, url string) (upstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("fetch upstream: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("read upstream: %w", err)
	}
	return upstreamResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
