package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "YIELDSCOPE"

// FeedConfig selects where raw pools come from. File wins over URL.
type FeedConfig struct {
	PoolsURL     string
	PoolsFile    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	RPCURL       string
}

// GatewayConfig addresses the message gateway and the wallet sending through it.
type GatewayConfig struct {
	URL    string
	Wallet string
}

// load builds a viper instance merging defaults, config file, environment
// variables and flags. Explicitly set flags win, then env, then file.
func load(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func feedConfig(v *viper.Viper) FeedConfig {
	return FeedConfig{
		PoolsURL:     strings.TrimSpace(v.GetString("pools-url")),
		PoolsFile:    strings.TrimSpace(v.GetString("pools-file")),
		Timeout:      v.GetDuration("timeout"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		RPCURL:       strings.TrimSpace(v.GetString("rpc")),
	}
}

func gatewayConfig(v *viper.Viper) GatewayConfig {
	return GatewayConfig{
		URL:    strings.TrimSpace(v.GetString("gateway")),
		Wallet: strings.TrimSpace(v.GetString("wallet")),
	}
}

// Validate reports a missing pool source.
func (f FeedConfig) Validate() error {
	if f.PoolsURL == "" && f.PoolsFile == "" {
		return fmt.Errorf("one of pools-url or pools-file is required")
	}
	return nil
}
