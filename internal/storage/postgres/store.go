package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yieldScope/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for ranked strategies and sync state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PutStrategyBatch inserts or updates strategies by id.
func (s *Store) PutStrategyBatch(ctx context.Context, records []model.SyncRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO strategies (
				id, name, apy_percent, apy_display, risk_tier, risk_score, tvl_display,
				rank, volume_usd, liquidity_usd, pool_fee_bps, synced_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
			ON CONFLICT (id)
			DO UPDATE SET
				name = EXCLUDED.name,
				apy_percent = EXCLUDED.apy_percent,
				apy_display = EXCLUDED.apy_display,
				risk_tier = EXCLUDED.risk_tier,
				risk_score = EXCLUDED.risk_score,
				tvl_display = EXCLUDED.tvl_display,
				rank = EXCLUDED.rank,
				volume_usd = EXCLUDED.volume_usd,
				liquidity_usd = EXCLUDED.liquidity_usd,
				pool_fee_bps = EXCLUDED.pool_fee_bps,
				synced_at = EXCLUDED.synced_at,
				updated_at = now()
		`,
			r.Strategy.ID,
			r.Strategy.Name,
			r.Strategy.APYPercent,
			r.Strategy.APYDisplay,
			string(r.Strategy.Risk.Tier),
			r.Strategy.Risk.Score,
			r.Strategy.TVLDisplay,
			r.Rank,
			r.VolumeUSD,
			r.LiquidityUSD,
			r.PoolFeeBps,
			r.SyncedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, r := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert strategy %s: %w", r.Strategy.ID, err)
		}
	}
	return nil
}

// TopStrategies returns up to limit strategies of the most recent sync ordered
// by rank. Rows left over from earlier syncs are not returned. A limit of 0
// returns the whole ranking.
func (s *Store) TopStrategies(ctx context.Context, limit int) ([]model.SyncRecord, error) {
	var maxRows *int
	if limit > 0 {
		maxRows = &limit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, apy_percent, apy_display, risk_tier, risk_score, tvl_display,
			rank, volume_usd, liquidity_usd, pool_fee_bps, synced_at
		FROM strategies
		WHERE synced_at = (SELECT max(synced_at) FROM strategies)
		ORDER BY rank ASC, id ASC
		LIMIT $1
	`, maxRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SyncRecord
	for rows.Next() {
		var (
			r    model.SyncRecord
			tier string
		)
		if err := rows.Scan(
			&r.Strategy.ID,
			&r.Strategy.Name,
			&r.Strategy.APYPercent,
			&r.Strategy.APYDisplay,
			&tier,
			&r.Strategy.Risk.Score,
			&r.Strategy.TVLDisplay,
			&r.Rank,
			&r.VolumeUSD,
			&r.LiquidityUSD,
			&r.PoolFeeBps,
			&r.SyncedAt,
		); err != nil {
			return nil, err
		}
		r.Strategy.Risk.Tier = model.RiskTier(tier)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadState returns the sync checkpoint for a name.
func (s *Store) LoadState(ctx context.Context, name string) (model.SyncState, bool, error) {
	if name == "" {
		return model.SyncState{}, false, fmt.Errorf("state name required")
	}
	st := model.SyncState{Name: name}
	row := s.pool.QueryRow(ctx, `
		SELECT last_synced_at, strategy_count, top_strategy_id FROM sync_state WHERE name=$1
	`, name)
	if err := row.Scan(&st.LastSyncedAt, &st.StrategyCount, &st.TopStrategyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SyncState{}, false, nil
		}
		return model.SyncState{}, false, err
	}
	return st, true, nil
}

// SaveState upserts the sync checkpoint.
func (s *Store) SaveState(ctx context.Context, state model.SyncState) error {
	if state.Name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_state (name, last_synced_at, strategy_count, top_strategy_id, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET last_synced_at = EXCLUDED.last_synced_at,
			strategy_count = EXCLUDED.strategy_count,
			top_strategy_id = EXCLUDED.top_strategy_id,
			updated_at = now()
	`, state.Name, state.LastSyncedAt, state.StrategyCount, state.TopStrategyID)
	return err
}
