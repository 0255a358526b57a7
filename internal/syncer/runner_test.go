package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldScope/internal/model"
	"yieldScope/internal/process"
	"yieldScope/internal/retry"
	"yieldScope/internal/storage/memory"
)

type staticSource struct {
	pools []model.RawPool
	err   error
}

func (s staticSource) Pools(context.Context) ([]model.RawPool, error) {
	return s.pools, s.err
}

type flakySink struct {
	failures int
	inner    *memory.Store
}

func (f *flakySink) PutStrategyBatch(ctx context.Context, records []model.SyncRecord) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection refused")
	}
	return f.inner.PutStrategyBatch(ctx, records)
}

type tickerEnricher struct{}

func (tickerEnricher) Enrich(_ context.Context, pools []model.RawPool) []model.RawPool {
	out := make([]model.RawPool, len(pools))
	copy(out, pools)
	for i := range out {
		if out[i].Token1Ticker == "" && out[i].Token1Address != "" {
			out[i].Token1Ticker = "DAI"
		}
	}
	return out
}

func pool(id, t0, t1 string, volume float64) model.RawPool {
	return model.RawPool{
		ID:           model.Text(id),
		Token0Ticker: model.Text(t0),
		Token1Ticker: model.Text(t1),
		VolumeUSD:    model.Number(volume),
		LiquidityUSD: 100000,
		PoolFeeBps:   30,
	}
}

func fixturePools() []model.RawPool {
	a := pool("a", "USDC", "", 1000)
	a.Token1Address = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	return []model.RawPool{
		a,
		pool("b", "AO", "wAR", 5000),
		pool("c", "FOO", "BAR", 50000),
		pool("a", "AO", "wAR", 90000),
		pool("e", "USDC", "DAI", 0),
	}
}

func TestRunnerRun(t *testing.T) {
	mem := memory.NewStore()
	sink := &flakySink{failures: 1, inner: mem}
	fixed := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	r := NewRunner(RunConfig{BatchSize: 2, MaxRetries: 1, RetryBackoff: time.Millisecond},
		staticSource{pools: fixturePools()}, tickerEnricher{}, sink, mem, nil)
	r.now = func() time.Time { return fixed }

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Fetched)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 3, summary.Written)
	assert.Equal(t, 2, summary.Batches)

	batches := mem.Batches()
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)

	latest := mem.Latest()
	ids := []string{latest[0].Strategy.ID, latest[1].Strategy.ID, latest[2].Strategy.ID}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, "USDC/DAI", latest[1].Strategy.Name)
	assert.Equal(t, model.RiskVeryLow, latest[1].Strategy.Risk.Tier)
	assert.Equal(t, 1000.0, latest[1].VolumeUSD, "metrics come from the first pool with the id")
	assert.Equal(t, 3, latest[2].Rank)
	assert.True(t, latest[0].SyncedAt.Equal(fixed))

	state, ok, err := mem.LoadState(context.Background(), "pools")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.SyncState{Name: "pools", LastSyncedAt: fixed, StrategyCount: 3, TopStrategyID: "b"}, state)
}

func TestRunnerLimit(t *testing.T) {
	mem := memory.NewStore()
	r := NewRunner(RunConfig{BatchSize: 10, Limit: 1}, staticSource{pools: fixturePools()}, nil, mem, nil, nil)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, "b", summary.State.TopStrategyID)
}

func TestRunnerSinkGivesUp(t *testing.T) {
	mem := memory.NewStore()
	sink := &flakySink{failures: 5, inner: mem}
	r := NewRunner(RunConfig{BatchSize: 2, MaxRetries: 1, RetryBackoff: time.Millisecond},
		staticSource{pools: fixturePools()}, nil, sink, mem, nil)

	_, err := r.Run(context.Background())
	require.Error(t, err)
	_, ok, _ := mem.LoadState(context.Background(), "pools")
	assert.False(t, ok, "state must not advance on failure")
}

func TestRunnerSourceError(t *testing.T) {
	r := NewRunner(RunConfig{BatchSize: 2}, staticSource{err: errors.New("upstream down")}, nil, memory.NewStore(), nil, nil)
	_, err := r.Run(context.Background())
	require.ErrorContains(t, err, "upstream down")
}

func TestRunnerValidates(t *testing.T) {
	_, err := NewRunner(RunConfig{BatchSize: 0}, staticSource{}, nil, memory.NewStore(), nil, nil).Run(context.Background())
	require.Error(t, err)
	_, err = NewRunner(RunConfig{BatchSize: 1}, nil, nil, memory.NewStore(), nil, nil).Run(context.Background())
	require.Error(t, err)
	_, err = NewRunner(RunConfig{BatchSize: 1}, staticSource{}, nil, nil, nil, nil).Run(context.Background())
	require.Error(t, err)
}

type captureClient struct {
	msgs  []process.Message
	reply process.Response
}

func (c *captureClient) Send(_ context.Context, msg process.Message) (process.Response, error) {
	c.msgs = append(c.msgs, msg)
	return c.reply, nil
}

func TestProcessSink(t *testing.T) {
	client := &captureClient{reply: process.Success{}}
	sink := NewProcessSink(client, "registry", nil)

	records := []model.SyncRecord{
		{Strategy: model.Strategy{ID: "b", Name: "AO/wAR"}, Rank: 3},
		{Strategy: model.Strategy{ID: "c", Name: "FOO/BAR"}, Rank: 4},
	}
	require.NoError(t, sink.PutStrategyBatch(context.Background(), records))
	require.NoError(t, sink.PutStrategyBatch(context.Background(), nil))
	require.Len(t, client.msgs, 1)

	msg := client.msgs[0]
	assert.Equal(t, "registry", msg.Target)
	assert.Equal(t, ActionSyncStrategies, msg.Action)
	assert.Equal(t, "2", process.Value(msg.Tags, "Count"))
	assert.Equal(t, "3", process.Value(msg.Tags, "First-Rank"))

	var sent []model.Strategy
	require.NoError(t, json.Unmarshal([]byte(msg.Data), &sent))
	assert.Equal(t, []model.Strategy{records[0].Strategy, records[1].Strategy}, sent)

	client.reply = process.Pending{SessionID: "q"}
	require.NoError(t, sink.PutStrategyBatch(context.Background(), records))

	client.reply = process.Error{Code: "E1", Message: "not owner"}
	err := sink.PutStrategyBatch(context.Background(), records)
	require.ErrorContains(t, err, "not owner")
	require.ErrorIs(t, err, retry.ErrPermanent)
}

func TestRunnerDoesNotResendRejectedBatch(t *testing.T) {
	client := &captureClient{reply: process.Error{Code: "E1", Message: "not owner"}}
	sink := NewProcessSink(client, "registry", nil)
	r := NewRunner(RunConfig{BatchSize: 10, MaxRetries: 3, RetryBackoff: time.Millisecond},
		staticSource{pools: fixturePools()}, nil, sink, nil, nil)

	_, err := r.Run(context.Background())
	require.ErrorContains(t, err, "not owner")
	assert.Len(t, client.msgs, 1)
}
