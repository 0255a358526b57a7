package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldScope/internal/chat"
	"yieldScope/internal/config"
	"yieldScope/internal/process"
	"yieldScope/internal/yield"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the advisor about the current ranked strategies",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runChat,
	}

	addFeedFlags(cmd.Flags())
	addGatewayFlags(cmd.Flags())
	addPollFlags(cmd.Flags(), 10)
	cmd.Flags().String("backend", config.BackendProcess, "advisor backend: process or anthropic")
	cmd.Flags().String("advisor-process", "", "advisor process id for the process backend")
	cmd.Flags().String("model", "claude-sonnet-4-5", "model for the anthropic backend")
	cmd.Flags().Int64("max-tokens", 1024, "max tokens for the anthropic backend")
	cmd.Flags().Int("limit", 10, "strategies included in the prompt")
	addLogFlag(cmd.Flags())
	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadChat(cfgFile, cmd.Flags())
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
	prompt := chat.BuildPrompt(strings.Join(args, " "), yield.Recommend(raws, cfg.Limit))

	var backend chat.Backend
	switch cfg.Backend {
	case config.BackendAnthropic:
		client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicKey))
		backend = chat.NewAnthropicBackend(&client, cfg.Model, cfg.MaxTokens)
	default:
		backend = &chat.ProcessBackend{
			Client: process.NewHTTPClient(cfg.Gateway.URL,
				process.WithWallet(cfg.Gateway.Wallet),
				process.WithLogger(logger),
			),
			Target: cfg.AdvisorProcess,
		}
	}

	poller := chat.NewPoller(backend, chat.Policy{
		MaxAttempts: cfg.Poll.MaxAttempts,
		BaseDelay:   cfg.Poll.BaseDelay,
		Step:        cfg.Poll.Step,
	}, logger)

	outcome, err := poller.Ask(ctx, prompt)
	logger.Info("chat finished",
		zap.String("backend", cfg.Backend),
		zap.String("state", outcome.State.String()),
		zap.Int("attempts", outcome.Attempts),
		zap.String("session_id", outcome.SessionID),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), outcome.Answer)
	return nil
}
