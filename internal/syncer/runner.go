// Package syncer runs the fetch, rank and persist pipeline that seeds
// strategy sinks from the pool feed.
package syncer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"yieldScope/internal/feed"
	"yieldScope/internal/model"
	"yieldScope/internal/observability"
	"yieldScope/internal/retry"
	"yieldScope/internal/storage"
	"yieldScope/internal/yield"
)

// Enricher fills missing token fields before normalization.
type Enricher interface {
	Enrich(ctx context.Context, pools []model.RawPool) []model.RawPool
}

// RunConfig holds runtime settings for a sync run.
type RunConfig struct {
	Name         string
	BatchSize    int
	Limit        int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Summary describes a finished run.
type Summary struct {
	Fetched    int
	Duplicates int
	Written    int
	Batches    int
	State      model.SyncState
}

// Runner fetches pools, ranks them and writes the result to a sink.
type Runner struct {
	cfg      RunConfig
	source   feed.Source
	enricher Enricher
	sink     storage.Storage
	state    StateStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewRunner builds a Runner. enricher and state may be nil.
func NewRunner(cfg RunConfig, source feed.Source, enricher Enricher, sink storage.Storage, state StateStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "pools"
	}
	return &Runner{
		cfg:      cfg,
		source:   source,
		enricher: enricher,
		sink:     sink,
		state:    state,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one sync pass.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary, err := r.run(ctx)
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.RecordSyncRun(status, time.Since(start).Seconds(), summary.Written, summary.Duplicates, r.now().Unix())
	return summary, err
}

func (r *Runner) run(ctx context.Context) (Summary, error) {
	var summary Summary
	if r.source == nil {
		return summary, fmt.Errorf("source is nil")
	}
	if r.sink == nil {
		return summary, fmt.Errorf("sink is nil")
	}
	if r.cfg.BatchSize <= 0 {
		return summary, fmt.Errorf("batch size must be greater than zero")
	}

	if r.state != nil {
		prev, ok, err := r.state.LoadState(ctx, r.cfg.Name)
		if err != nil {
			return summary, fmt.Errorf("load state: %w", err)
		}
		if ok {
			r.logger.Info("previous sync",
				zap.Time("last_synced_at", prev.LastSyncedAt),
				zap.Int("strategy_count", prev.StrategyCount),
				zap.String("top_strategy_id", prev.TopStrategyID),
			)
		}
	}

	raws, err := r.source.Pools(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch pools: %w", err)
	}
	summary.Fetched = len(raws)

	if r.enricher != nil {
		raws = r.enricher.Enrich(ctx, raws)
	}

	normalized := yield.NormalizeAll(raws)
	unique := yield.DedupeByID(normalized)
	summary.Duplicates = len(normalized) - len(unique)
	if summary.Duplicates > 0 {
		r.logger.Warn("duplicate strategy ids dropped",
			zap.Int("duplicates", summary.Duplicates),
			zap.Strings("ids", duplicateIDs(normalized)),
		)
	}

	ranked := yield.Rank(unique)
	if r.cfg.Limit > 0 && len(ranked) > r.cfg.Limit {
		ranked = ranked[:r.cfg.Limit]
	}

	syncedAt := r.now()
	records := buildRecords(ranked, raws, syncedAt)

	spans, err := SplitBatches(len(records), r.cfg.BatchSize)
	if err != nil {
		return summary, err
	}
	for _, span := range spans {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		batch := records[span.Start:span.End]
		err := retry.Do(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			err := r.sink.PutStrategyBatch(ctx, batch)
			if err != nil {
				r.logger.Warn("write batch failed", zap.Error(err), zap.Int("from_rank", span.Start+1), zap.Int("to_rank", span.End))
			}
			return err
		})
		if err != nil {
			return summary, fmt.Errorf("store strategies: %w", err)
		}
		summary.Written += len(batch)
		summary.Batches++
		r.logger.Info("batch complete", zap.Int("strategies", len(batch)), zap.Int("from_rank", span.Start+1), zap.Int("to_rank", span.End))
	}

	summary.State = model.SyncState{
		Name:          r.cfg.Name,
		LastSyncedAt:  syncedAt,
		StrategyCount: len(records),
	}
	if len(records) > 0 {
		summary.State.TopStrategyID = records[0].Strategy.ID
	}
	if r.state != nil {
		if err := r.state.SaveState(ctx, summary.State); err != nil {
			return summary, fmt.Errorf("save state: %w", err)
		}
	}

	r.logger.Info("sync complete",
		zap.Int("fetched", summary.Fetched),
		zap.Int("written", summary.Written),
		zap.Int("duplicates", summary.Duplicates),
	)
	return summary, nil
}

// buildRecords attaches rank and the raw metrics of the first pool that
// produced each strategy id.
func buildRecords(ranked []model.Strategy, raws []model.RawPool, syncedAt time.Time) []model.SyncRecord {
	byID := make(map[string]model.RawPool, len(raws))
	for _, raw := range raws {
		id := yield.Normalize(raw).ID
		if _, ok := byID[id]; !ok {
			byID[id] = raw
		}
	}

	records := make([]model.SyncRecord, len(ranked))
	for i, s := range ranked {
		raw := byID[s.ID]
		records[i] = model.SyncRecord{
			Strategy:     s,
			Rank:         i + 1,
			VolumeUSD:    raw.VolumeUSD.Float64(),
			LiquidityUSD: raw.LiquidityUSD.Float64(),
			PoolFeeBps:   raw.PoolFeeBps.Float64(),
			SyncedAt:     syncedAt,
		}
	}
	return records
}

func duplicateIDs(strategies []model.Strategy) []string {
	seen := make(map[string]int, len(strategies))
	var dups []string
	for _, s := range strategies {
		seen[s.ID]++
		if seen[s.ID] == 2 {
			dups = append(dups, s.ID)
		}
	}
	return dups
}
