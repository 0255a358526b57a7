package syncer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"yieldScope/internal/model"
	"yieldScope/internal/process"
	"yieldScope/internal/retry"
)

const ActionSyncStrategies = "Sync-Strategies"

// ProcessSink seeds a registry process with ranked strategies.
type ProcessSink struct {
	client process.Client
	target string
	logger *zap.Logger
}

func NewProcessSink(client process.Client, target string, logger *zap.Logger) *ProcessSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessSink{client: client, target: target, logger: logger}
}

// PutStrategyBatch sends one Sync-Strategies message per batch. A Pending
// reply counts as accepted. An Error reply is permanent and is not retried.
func (s *ProcessSink) PutStrategyBatch(ctx context.Context, records []model.SyncRecord) error {
	if len(records) == 0 {
		return nil
	}
	strategies := make([]model.Strategy, len(records))
	for i, r := range records {
		strategies[i] = r.Strategy
	}
	data, err := json.Marshal(strategies)
	if err != nil {
		return fmt.Errorf("marshal strategies: %w", err)
	}

	resp, err := s.client.Send(ctx, process.Message{
		Target: s.target,
		Action: ActionSyncStrategies,
		Data:   string(data),
		Tags: []process.Tag{
			{Name: "Count", Value: fmt.Sprint(len(records))},
			{Name: "First-Rank", Value: fmt.Sprint(records[0].Rank)},
		},
	})
	if err != nil {
		return fmt.Errorf("send strategies: %w", err)
	}

	switch r := resp.(type) {
	case process.Error:
		return retry.Permanent(fmt.Errorf("registry rejected batch: %w", r))
	case process.Pending:
		s.logger.Info("strategy batch queued", zap.String("session_id", r.SessionID), zap.Int("count", len(records)))
	}
	return nil
}
