package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldScope/internal/config"
	"yieldScope/internal/proxy"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the /pools passthrough and ranked /strategies",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", ":8080", "listen address")
	cmd.Flags().String("upstream", "", "upstream base URL; /pools is appended")
	cmd.Flags().Duration("cache-ttl", 30*time.Second, "cache successful /pools responses for this long (0 disables)")
	cmd.Flags().Duration("timeout", 15*time.Second, "upstream request timeout")
	cmd.Flags().Int("default-limit", 20, "strategies returned when no limit is given")
	cmd.Flags().Int("max-limit", 100, "upper bound for the limit query parameter")
	cmd.Flags().String("rpc", "", "optional EVM RPC URL for resolving missing token symbols")
	addLogFlag(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
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

	resolver, closeResolver, err := newResolver(ctx, cfg.RPCURL, logger)
	if err != nil {
		return err
	}
	defer closeResolver()

	var enricher proxy.Enricher
	if resolver != nil {
		enricher = resolver
	}

	server, err := proxy.NewServer(proxy.Config{
		ListenAddr:      cfg.ListenAddr,
		UpstreamURL:     cfg.UpstreamURL,
		CacheTTL:        cfg.CacheTTL,
		UpstreamTimeout: cfg.UpstreamTimeout,
		DefaultLimit:    cfg.DefaultLimit,
		MaxLimit:        cfg.MaxLimit,
	}, nil, enricher, logger)
	if err != nil {
		return err
	}
	defer server.Close()

	logger.Info("serve start",
		zap.String("listen", cfg.ListenAddr),
		zap.String("upstream", cfg.UpstreamURL),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)
	return server.Run(ctx)
}
