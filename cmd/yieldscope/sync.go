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
	"yieldScope/internal/process"
	"yieldScope/internal/storage"
	"yieldScope/internal/storage/memory"
	"yieldScope/internal/storage/postgres"
	"yieldScope/internal/syncer"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch pools, rank them and write the strategies to a sink",
		RunE:  runSync,
	}

	addFeedFlags(cmd.Flags())
	addGatewayFlags(cmd.Flags())
	cmd.Flags().String("sink", config.SinkJSONL, "sink: jsonl, postgres, memory or process")
	cmd.Flags().String("out", "./data/strategies.jsonl", "output JSONL path for the jsonl sink")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for the postgres sink and sync state")
	cmd.Flags().String("state-dir", "./data", "directory for the sync state file when not using postgres")
	cmd.Flags().String("state-name", "pools", "name of the sync state record")
	cmd.Flags().Int("batch-size", 100, "strategies per write")
	cmd.Flags().Int("limit", 0, "keep only the top N strategies (0 keeps all)")
	cmd.Flags().String("registry-process", "", "registry process id for the process sink")
	addLogFlag(cmd.Flags())
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSync(cfgFile, cmd.Flags())
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

	sink, state, closeSink, err := openSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	resolver, closeResolver, err := newResolver(ctx, cfg.Feed.RPCURL, logger)
	if err != nil {
		return err
	}
	defer closeResolver()

	var enricher syncer.Enricher
	if resolver != nil {
		enricher = resolver
	}

	runner := syncer.NewRunner(syncer.RunConfig{
		Name:         cfg.StateName,
		BatchSize:    cfg.BatchSize,
		Limit:        cfg.Limit,
		MaxRetries:   cfg.Feed.MaxRetries,
		RetryBackoff: cfg.Feed.RetryBackoff,
	}, newSource(cfg.Feed, logger), enricher, sink, state, logger)

	logger.Info("sync start",
		zap.String("pools_url", cfg.Feed.PoolsURL),
		zap.String("pools_file", cfg.Feed.PoolsFile),
		zap.String("sink", cfg.Sink),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Int("limit", cfg.Limit),
	)

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if mem, ok := sink.(*memory.Store); ok {
		for _, r := range mem.Latest() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", r.Rank, r.Strategy.ID, r.Strategy.APYDisplay, r.Strategy.Risk.Tier)
		}
	}
	logger.Info("sync done", zap.Int("written", summary.Written), zap.String("top_strategy_id", summary.State.TopStrategyID))
	return nil
}

// openSink builds the configured sink and a state store to go with it.
func openSink(ctx context.Context, cfg config.SyncConfig, logger *zap.Logger) (storage.Storage, syncer.StateStore, func(), error) {
	fileState := syncer.NewFileStateStore(cfg.StateDir)

	switch cfg.Sink {
	case config.SinkPostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		return store, store, store.Close, nil
	case config.SinkMemory:
		store := memory.NewStore()
		return store, store, func() {}, nil
	case config.SinkProcess:
		client := process.NewHTTPClient(cfg.Gateway.URL,
			process.WithWallet(cfg.Gateway.Wallet),
			process.WithLogger(logger),
		)
		return syncer.NewProcessSink(client, cfg.RegistryProcess, logger), fileState, func() {}, nil
	default:
		return storage.NewJSONLStorage(cfg.Out), fileState, func() {}, nil
	}
}
