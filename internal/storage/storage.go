package storage

import (
	"context"

	"yieldScope/internal/model"
)

// Storage defines a sink for ranked strategy records.
type Storage interface {
	PutStrategyBatch(ctx context.Context, records []model.SyncRecord) error
}
