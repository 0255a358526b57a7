package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"yieldScope/internal/model"
)

// setupStore starts a PostgreSQL container and returns a store with the schema applied.
func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx), "schema must be re-runnable")
	return store
}

var firstSync = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func record(id string, rank int, apy float64, tier model.RiskTier) model.SyncRecord {
	return model.SyncRecord{
		Strategy: model.Strategy{
			ID:         id,
			Name:       id + "/USDC",
			APYPercent: apy,
			APYDisplay: "x%",
			Risk:       model.NewRiskAssessment(tier),
			TVLDisplay: "$1.00k",
		},
		Rank:         rank,
		VolumeUSD:    100,
		LiquidityUSD: 1000,
		PoolFeeBps:   30,
		SyncedAt:     firstSync,
	}
}

func TestStoreUpsertStrategies(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutStrategyBatch(ctx, []model.SyncRecord{
		record("a", 1, 12.5, model.RiskVeryLow),
		record("b", 2, 40, model.RiskHigh),
	}))
	require.NoError(t, store.PutStrategyBatch(ctx, []model.SyncRecord{
		record("b", 1, 41, model.RiskHigh),
		record("a", 2, 12.5, model.RiskVeryLow),
	}))

	top, err := store.TopStrategies(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].Strategy.ID)
	assert.Equal(t, 41.0, top[0].Strategy.APYPercent)
	assert.Equal(t, model.RiskHigh, top[0].Strategy.Risk.Tier)
	assert.Equal(t, 20, top[0].Strategy.Risk.Score)
	assert.True(t, top[1].SyncedAt.Equal(firstSync))

	require.NoError(t, store.PutStrategyBatch(ctx, nil))
}

func TestStoreTopStrategiesDropsStaleRows(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutStrategyBatch(ctx, []model.SyncRecord{
		record("a", 1, 12.5, model.RiskVeryLow),
		record("b", 2, 40, model.RiskHigh),
	}))

	second := record("b", 1, 41, model.RiskHigh)
	second.SyncedAt = firstSync.Add(time.Hour)
	require.NoError(t, store.PutStrategyBatch(ctx, []model.SyncRecord{second}))

	top, err := store.TopStrategies(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1, "a dropped out of the second sync")
	assert.Equal(t, "b", top[0].Strategy.ID)
	assert.Equal(t, 1, top[0].Rank)
	assert.True(t, top[0].SyncedAt.Equal(second.SyncedAt))

	all, err := store.TopStrategies(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStoreSyncState(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadState(ctx, "pools")
	require.NoError(t, err)
	assert.False(t, ok)

	state := model.SyncState{
		Name:          "pools",
		LastSyncedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		StrategyCount: 7,
		TopStrategyID: "a",
	}
	require.NoError(t, store.SaveState(ctx, state))
	state.StrategyCount = 8
	require.NoError(t, store.SaveState(ctx, state))

	got, ok, err := store.LoadState(ctx, "pools")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8, got.StrategyCount)
	assert.Equal(t, "a", got.TopStrategyID)
	assert.True(t, got.LastSyncedAt.Equal(state.LastSyncedAt))

	require.Error(t, store.SaveState(ctx, model.SyncState{}))
}
