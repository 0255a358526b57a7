package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"yieldScope/internal/chain"
	"yieldScope/internal/config"
	"yieldScope/internal/feed"
	"yieldScope/internal/model"
	"yieldScope/internal/tokenmeta"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "yieldscope",
		Short:        "DeFi pool ranking, sync and advisor tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(
		newServeCmd(),
		newSyncCmd(),
		newRankCmd(),
		newChatCmd(),
		newDeployCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addFeedFlags registers the pool source flags shared by most commands.
func addFeedFlags(flags *pflag.FlagSet) {
	flags.String("pools-url", "", "upstream pools endpoint (e.g. http://localhost:3000/pools)")
	flags.String("pools-file", "", "read pools from a JSON or JSONL file instead of the network")
	flags.Duration("timeout", 15*time.Second, "upstream request timeout")
	flags.Int("max-retries", 3, "maximum retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("rpc", "", "optional EVM RPC URL for resolving missing token symbols")
}

func addGatewayFlags(flags *pflag.FlagSet) {
	flags.String("gateway", "", "message gateway base URL")
	flags.String("wallet", "", "wallet address that owns outgoing messages")
}

func addPollFlags(flags *pflag.FlagSet, maxAttempts int) {
	flags.Int("max-attempts", maxAttempts, "maximum attempts before giving up")
	flags.Duration("base-delay", time.Second, "delay before the first retry")
	flags.Duration("step", time.Second, "delay added per further retry")
}

func addLogFlag(flags *pflag.FlagSet) {
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newSource(cfg config.FeedConfig, logger *zap.Logger) feed.Source {
	if cfg.PoolsFile != "" {
		return &feed.FileSource{Path: cfg.PoolsFile}
	}
	return feed.NewHTTPSource(feed.HTTPConfig{
		URL:          cfg.PoolsURL,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, nil, logger)
}

// loadPools fetches the feed and, when an rpc url is configured, fills missing
// token tickers and names from chain before anything is normalized.
func loadPools(ctx context.Context, cfg config.FeedConfig, logger *zap.Logger) ([]model.RawPool, error) {
	raws, err := newSource(cfg, logger).Pools(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch pools: %w", err)
	}

	resolver, closeResolver, err := newResolver(ctx, cfg.RPCURL, logger)
	if err != nil {
		return nil, err
	}
	defer closeResolver()
	if resolver != nil {
		raws = resolver.Enrich(ctx, raws)
	}
	return raws, nil
}

// newResolver connects to rpcURL when set. The returned closer is never nil.
func newResolver(ctx context.Context, rpcURL string, logger *zap.Logger) (*tokenmeta.Resolver, func(), error) {
	if rpcURL == "" {
		return nil, func() {}, nil
	}
	chainClient, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect rpc: %w", err)
	}
	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		chainClient.Close()
		return nil, func() {}, fmt.Errorf("get chain id: %w", err)
	}
	logger.Info("token metadata enabled", zap.String("rpc", rpcURL), zap.String("chain_id", chainID.String()))
	return tokenmeta.NewResolver(chainClient, tokenmeta.NewCache(), logger), chainClient.Close, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
