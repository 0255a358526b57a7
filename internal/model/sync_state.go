package model

import "time"

// SyncState is the checkpoint written after a successful sync run.
type SyncState struct {
	Name          string    `json:"name"`
	LastSyncedAt  time.Time `json:"last_synced_at"`
	StrategyCount int       `json:"strategy_count"`
	TopStrategyID string    `json:"top_strategy_id"`
}
