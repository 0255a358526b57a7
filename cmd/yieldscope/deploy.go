package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldScope/internal/agent"
	"yieldScope/internal/chat"
	"yieldScope/internal/config"
	"yieldScope/internal/model"
	"yieldScope/internal/process"
	"yieldScope/internal/yield"
)

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy an agent for one ranked strategy",
		RunE:  runDeploy,
	}

	addFeedFlags(cmd.Flags())
	addGatewayFlags(cmd.Flags())
	addPollFlags(cmd.Flags(), 5)
	cmd.Flags().String("registry-process", "", "registry process id that deploys agents")
	cmd.Flags().String("strategy", "", "strategy id to deploy")
	addLogFlag(cmd.Flags())
	return cmd
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDeploy(cfgFile, cmd.Flags())
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

	raws, err := loadPools(ctx, cfg.Feed, logger)
	if err != nil {
		return err
	}
	strategy, ok := findStrategy(yield.Recommend(raws, 0), cfg.StrategyID)
	if !ok {
		return fmt.Errorf("strategy %q is not among the ranked strategies", cfg.StrategyID)
	}

	deployer := &agent.Deployer{
		Client: process.NewHTTPClient(cfg.Gateway.URL,
			process.WithWallet(cfg.Gateway.Wallet),
			process.WithLogger(logger),
		),
		Target: cfg.RegistryProcess,
		Policy: chat.Policy{
			MaxAttempts: cfg.Poll.MaxAttempts,
			BaseDelay:   cfg.Poll.BaseDelay,
			Step:        cfg.Poll.Step,
		},
		Logger: logger,
	}

	logger.Info("deploy start",
		zap.String("strategy_id", strategy.ID),
		zap.String("risk_tier", string(strategy.Risk.Tier)),
		zap.String("apy", strategy.APYDisplay),
	)
	agentID, err := deployer.Deploy(ctx, strategy, cfg.Gateway.Wallet)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), agentID)
	return nil
}

func findStrategy(strategies []model.Strategy, id string) (model.Strategy, bool) {
	for _, s := range strategies {
		if s.ID == id {
			return s, true
		}
	}
	return model.Strategy{}, false
}
