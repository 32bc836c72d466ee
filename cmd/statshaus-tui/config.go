package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/statshaus/internal/model"
	"github.com/tinytelemetry/statshaus/internal/statsapi"
)

// cliConfig holds only TUI-relevant configuration.
type cliConfig struct {
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Endpoint        string        `mapstructure:"endpoint"`
	TickInterval    time.Duration `mapstructure:"tick-interval"`
	FetchThreshold  int           `mapstructure:"fetch-threshold"`
	ResumeThreshold int           `mapstructure:"resume-threshold"`
	HTTPTimeout     time.Duration `mapstructure:"http-timeout"`
}

func (c cliConfig) statsAPI() statsapi.Config {
	return statsapi.Config{
		Endpoint: c.Endpoint,
		Username: c.Username,
		Password: c.Password,
		Timeout:  c.HTTPTimeout,
	}
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("STATSHAUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("endpoint", model.DefaultEndpoint)
	v.SetDefault("tick-interval", model.DefaultTickInterval)
	v.SetDefault("fetch-threshold", model.DefaultFetchThreshold)
	v.SetDefault("resume-threshold", model.DefaultResumeThreshold)
	v.SetDefault("http-timeout", model.DefaultHTTPTimeout)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "statshaus", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("invalid tick-interval: %s", cfg.TickInterval)
	}
	if cfg.FetchThreshold < 0 || cfg.ResumeThreshold < 0 {
		return cfg, fmt.Errorf("fetch thresholds must not be negative")
	}

	return cfg, nil
}
