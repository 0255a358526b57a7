package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	ListenAddr      string
	UpstreamURL     string
	CacheTTL        time.Duration
	UpstreamTimeout time.Duration
	DefaultLimit    int
	MaxLimit        int
	RPCURL          string
	LogLevel        string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"listen":        ":8080",
		"cache-ttl":     30 * time.Second,
		"default-limit": 20,
		"max-limit":     100,
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		ListenAddr:      v.GetString("listen"),
		UpstreamURL:     strings.TrimSpace(v.GetString("upstream")),
		CacheTTL:        v.GetDuration("cache-ttl"),
		UpstreamTimeout: v.GetDuration("timeout"),
		DefaultLimit:    v.GetInt("default-limit"),
		MaxLimit:        v.GetInt("max-limit"),
		RPCURL:          strings.TrimSpace(v.GetString("rpc")),
		LogLevel:        v.GetString("log-level"),
	}
	if cfg.UpstreamURL == "" {
		return cfg, fmt.Errorf("upstream is required")
	}
	return cfg, nil
}

// SyncConfig holds configuration for the sync command.
type SyncConfig struct {
	Feed            FeedConfig
	Gateway         GatewayConfig
	Sink            string
	Out             string
	PGDSN           string
	StateDir        string
	StateName       string
	BatchSize       int
	Limit           int
	RegistryProcess string
	LogLevel        string
}

// Sink names accepted by SyncConfig.Sink.
const (
	SinkJSONL    = "jsonl"
	SinkPostgres = "postgres"
	SinkMemory   = "memory"
	SinkProcess  = "process"
)

// LoadSync merges config file, environment variables, and flags into SyncConfig.
func LoadSync(cfgFile string, flags *pflag.FlagSet) (SyncConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"sink":       SinkJSONL,
		"out":        "./data/strategies.jsonl",
		"state-dir":  "./data",
		"state-name": "pools",
		"batch-size": 100,
		"limit":      0,
	})
	if err != nil {
		return SyncConfig{}, err
	}

	cfg := SyncConfig{
		Feed:            feedConfig(v),
		Gateway:         gatewayConfig(v),
		Sink:            strings.ToLower(strings.TrimSpace(v.GetString("sink"))),
		Out:             v.GetString("out"),
		PGDSN:           v.GetString("pg-dsn"),
		StateDir:        v.GetString("state-dir"),
		StateName:       v.GetString("state-name"),
		BatchSize:       v.GetInt("batch-size"),
		Limit:           v.GetInt("limit"),
		RegistryProcess: strings.TrimSpace(v.GetString("registry-process")),
		LogLevel:        v.GetString("log-level"),
	}

	if err := cfg.Feed.Validate(); err != nil {
		return cfg, err
	}
	if cfg.BatchSize <= 0 {
		return cfg, fmt.Errorf("batch-size must be greater than zero")
	}
	switch cfg.Sink {
	case SinkJSONL, SinkMemory:
	case SinkPostgres:
		if cfg.PGDSN == "" {
			return cfg, fmt.Errorf("pg-dsn is required for the postgres sink")
		}
	case SinkProcess:
		if cfg.Gateway.URL == "" || cfg.RegistryProcess == "" {
			return cfg, fmt.Errorf("gateway and registry-process are required for the process sink")
		}
	default:
		return cfg, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
	return cfg, nil
}

// RankConfig holds configuration for the rank command.
type RankConfig struct {
	Feed     FeedConfig
	PGDSN    string
	Limit    int
	Out      string
	Format   string
	LogLevel string
}

// LoadRank merges config file, environment variables, and flags into RankConfig.
func LoadRank(cfgFile string, flags *pflag.FlagSet) (RankConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"limit":  20,
		"out":    "-",
		"format": "table",
	})
	if err != nil {
		return RankConfig{}, err
	}

	cfg := RankConfig{
		Feed:     feedConfig(v),
		PGDSN:    strings.TrimSpace(v.GetString("pg-dsn")),
		Limit:    v.GetInt("limit"),
		Out:      v.GetString("out"),
		Format:   strings.ToLower(v.GetString("format")),
		LogLevel: v.GetString("log-level"),
	}
	// A stored ranking is read from postgres instead of the feed.
	if cfg.PGDSN == "" {
		if err := cfg.Feed.Validate(); err != nil {
			return cfg, err
		}
	}
	switch cfg.Format {
	case "table", "json", "jsonl":
	default:
		return cfg, fmt.Errorf("unknown format %q", cfg.Format)
	}
	return cfg, nil
}

// PollConfig holds the linear backoff settings shared by chat and deploy.
type PollConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Step        time.Duration
}

// ChatConfig holds configuration for the chat command.
type ChatConfig struct {
	Feed           FeedConfig
	Gateway        GatewayConfig
	Backend        string
	AdvisorProcess string
	AnthropicKey   string
	Model          string
	MaxTokens      int64
	Limit          int
	Poll           PollConfig
	LogLevel       string
}

// Chat backends.
const (
	BackendProcess   = "process"
	BackendAnthropic = "anthropic"
)

// LoadChat merges config file, environment variables, and flags into ChatConfig.
func LoadChat(cfgFile string, flags *pflag.FlagSet) (ChatConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"backend":      BackendProcess,
		"model":        "claude-sonnet-4-5",
		"max-tokens":   1024,
		"limit":        10,
		"max-attempts": 10,
		"base-delay":   time.Second,
		"step":         time.Second,
	})
	if err != nil {
		return ChatConfig{}, err
	}
	if err := v.BindEnv("anthropic-api-key", envPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return ChatConfig{}, fmt.Errorf("bind env: %w", err)
	}

	cfg := ChatConfig{
		Feed:           feedConfig(v),
		Gateway:        gatewayConfig(v),
		Backend:        strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		AdvisorProcess: strings.TrimSpace(v.GetString("advisor-process")),
		AnthropicKey:   v.GetString("anthropic-api-key"),
		Model:          v.GetString("model"),
		MaxTokens:      v.GetInt64("max-tokens"),
		Limit:          v.GetInt("limit"),
		Poll:           pollConfig(v),
		LogLevel:       v.GetString("log-level"),
	}

	if err := cfg.Feed.Validate(); err != nil {
		return cfg, err
	}
	switch cfg.Backend {
	case BackendProcess:
		if cfg.Gateway.URL == "" || cfg.AdvisorProcess == "" {
			return cfg, fmt.Errorf("gateway and advisor-process are required for the process backend")
		}
	case BackendAnthropic:
		if cfg.AnthropicKey == "" {
			return cfg, fmt.Errorf("anthropic-api-key is required for the anthropic backend")
		}
	default:
		return cfg, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return cfg, nil
}

// DeployConfig holds configuration for the deploy command.
type DeployConfig struct {
	Feed            FeedConfig
	Gateway         GatewayConfig
	RegistryProcess string
	StrategyID      string
	Poll            PollConfig
	LogLevel        string
}

// LoadDeploy merges config file, environment variables, and flags into DeployConfig.
func LoadDeploy(cfgFile string, flags *pflag.FlagSet) (DeployConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"max-attempts": 5,
		"base-delay":   time.Second,
		"step":         time.Second,
	})
	if err != nil {
		return DeployConfig{}, err
	}

	cfg := DeployConfig{
		Feed:            feedConfig(v),
		Gateway:         gatewayConfig(v),
		RegistryProcess: strings.TrimSpace(v.GetString("registry-process")),
		StrategyID:      strings.TrimSpace(v.GetString("strategy")),
		Poll:            pollConfig(v),
		LogLevel:        v.GetString("log-level"),
	}

	if err := cfg.Feed.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Gateway.URL == "" || cfg.RegistryProcess == "" {
		return cfg, fmt.Errorf("gateway and registry-process are required")
	}
	if cfg.Gateway.Wallet == "" {
		return cfg, fmt.Errorf("wallet is required")
	}
	if cfg.StrategyID == "" {
		return cfg, fmt.Errorf("strategy is required")
	}
	return cfg, nil
}

func pollConfig(v *viper.Viper) PollConfig {
	return PollConfig{
		MaxAttempts: v.GetInt("max-attempts"),
		BaseDelay:   v.GetDuration("base-delay"),
		Step:        v.GetDuration("step"),
	}
}
