// Package agent deploys strategy agents through a process.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"yieldScope/internal/chat"
	"yieldScope/internal/model"
	"yieldScope/internal/process"
	"yieldScope/internal/retry"
)

const ActionDeployAgent = "Deploy-Agent"

var (
	ErrRejected      = errors.New("deployment rejected")
	ErrNotConfirmed  = errors.New("deployment not confirmed")
	ErrMissingAgent  = errors.New("deployment reply has no Agent-Id")
	ErrInvalidWallet = errors.New("wallet is empty")
)

// Deployer sends Deploy-Agent messages and waits for confirmation.
type Deployer struct {
	Client process.Client
	Target string
	Policy chat.Policy
	Logger *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Deploy requests an agent for strategy on behalf of wallet and returns its id.
// Transport errors and Pending replies are retried with the policy's linear
// backoff. An Error reply stops immediately.
func (d *Deployer) Deploy(ctx context.Context, strategy model.Strategy, wallet string) (string, error) {
	if wallet == "" {
		return "", ErrInvalidWallet
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sleep := d.sleep
	if sleep == nil {
		sleep = retry.Wait
	}
	attempts := d.Policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	msg := process.Message{
		Target: d.Target,
		Action: ActionDeployAgent,
		Tags: []process.Tag{
			{Name: "Strategy-Id", Value: strategy.ID},
			{Name: "Risk-Tier", Value: string(strategy.Risk.Tier)},
			{Name: "Wallet", Value: wallet},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, d.Policy.Delay(attempt-2)); err != nil {
				return "", err
			}
		}

		resp, err := d.Client.Send(ctx, msg)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			logger.Warn("deploy attempt failed",
				zap.String("strategy_id", strategy.ID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		switch r := resp.(type) {
		case process.Success:
			agentID := process.Value(r.Tags, "Agent-Id")
			if agentID == "" {
				return "", ErrMissingAgent
			}
			logger.Info("agent deployed",
				zap.String("strategy_id", strategy.ID),
				zap.String("agent_id", agentID),
				zap.Int("attempt", attempt),
			)
			return agentID, nil
		case process.Error:
			return "", fmt.Errorf("%w: %s", ErrRejected, r.Error())
		case process.Pending:
			lastErr = fmt.Errorf("pending session %q", r.SessionID)
			logger.Debug("deploy pending", zap.String("strategy_id", strategy.ID), zap.Int("attempt", attempt))
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrNotConfirmed, attempts, lastErr)
}
