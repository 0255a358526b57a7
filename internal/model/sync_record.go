package model

import "time"

// SyncRecord is one persisted strategy row produced by a sync run.
type SyncRecord struct {
	Strategy     Strategy  `json:"strategy"`
	Rank         int       `json:"rank"`
	VolumeUSD    float64   `json:"volume_usd"`
	LiquidityUSD float64   `json:"liquidity_usd"`
	PoolFeeBps   float64   `json:"pool_fee_bps"`
	SyncedAt     time.Time `json:"synced_at"`
}
