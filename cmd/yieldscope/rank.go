package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldScope/internal/config"
	"yieldScope/internal/model"
	"yieldScope/internal/storage/postgres"
	"yieldScope/internal/yield"
)

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the ranked strategies for the current pool feed",
		RunE:  runRank,
	}

	addFeedFlags(cmd.Flags())
	cmd.Flags().String("pg-dsn", "", "read the latest synced ranking from Postgres instead of the feed")
	cmd.Flags().Int("limit", 20, "number of strategies to print (0 prints all)")
	cmd.Flags().String("out", "-", "output path, - for stdout")
	cmd.Flags().String("format", "table", "output format: table, json or jsonl")
	addLogFlag(cmd.Flags())
	return cmd
}

func runRank(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRank(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var strategies []model.Strategy
	if cfg.PGDSN != "" {
		strategies, err = storedStrategies(ctx, cfg.PGDSN, cfg.Limit)
	} else {
		strategies, err = rankedStrategies(ctx, cfg, logger)
	}
	if err != nil {
		return err
	}

	out, err := openOutput(cfg.Out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := writeStrategies(out, cfg.Format, strategies); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func rankedStrategies(ctx context.Context, cfg config.RankConfig, logger *zap.Logger) ([]model.Strategy, error) {
	raws, err := loadPools(ctx, cfg.Feed, logger)
	if err != nil {
		return nil, err
	}
	strategies := yield.Recommend(raws, cfg.Limit)
	logger.Debug("ranked pools", zap.Int("pools", len(raws)), zap.Int("strategies", len(strategies)))
	return strategies, nil
}

// storedStrategies reads the ranking written by the most recent postgres sync.
func storedStrategies(ctx context.Context, dsn string, limit int) ([]model.Strategy, error) {
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	records, err := store.TopStrategies(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read stored strategies: %w", err)
	}
	return strategiesOf(records), nil
}

func strategiesOf(records []model.SyncRecord) []model.Strategy {
	out := make([]model.Strategy, len(records))
	for i, r := range records {
		out[i] = r.Strategy
	}
	return out
}
