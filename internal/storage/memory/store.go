// Package memory keeps sync output in process memory for dry runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"yieldScope/internal/model"
)

// Store is an in-memory strategy sink and sync state store.
type Store struct {
	mu      sync.RWMutex
	batches [][]model.SyncRecord
	latest  map[string]model.SyncRecord
	states  map[string]model.SyncState
}

func NewStore() *Store {
	return &Store{
		latest: make(map[string]model.SyncRecord),
		states: make(map[string]model.SyncState),
	}
}

func (s *Store) PutStrategyBatch(ctx context.Context, records []model.SyncRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch := make([]model.SyncRecord, len(records))
	copy(batch, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	for _, r := range batch {
		s.latest[r.Strategy.ID] = r
	}
	return nil
}

// Batches returns the batches received so far, in order.
func (s *Store) Batches() [][]model.SyncRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]model.SyncRecord, len(s.batches))
	copy(out, s.batches)
	return out
}

// Latest returns the newest record per strategy id, ordered by rank.
func (s *Store) Latest() []model.SyncRecord {
	s.mu.RLock()
	out := make([]model.SyncRecord, 0, len(s.latest))
	for _, r := range s.latest {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sortByRank(out)
	return out
}

func (s *Store) LoadState(ctx context.Context, name string) (model.SyncState, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.SyncState{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[name]
	return st, ok, nil
}

func (s *Store) SaveState(ctx context.Context, state model.SyncState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.Name] = state
	return nil
}

func sortByRank(records []model.SyncRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Rank != records[j].Rank {
			return records[i].Rank < records[j].Rank
		}
		return records[i].Strategy.ID < records[j].Strategy.ID
	})
}
