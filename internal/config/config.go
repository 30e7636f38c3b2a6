// Package config loads continuum settings from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pbaille/continuum/internal/classifier"
	"github.com/pbaille/continuum/internal/insight"
	"github.com/pbaille/continuum/internal/logging"
	"github.com/pbaille/continuum/internal/sentiment"
	"github.com/pbaille/continuum/internal/store"
)

const (
	// DefaultConfigDir is the configuration directory under the user's home
	DefaultConfigDir = ".continuum"
	// EnvPrefix prefixes environment overrides, e.g. CONTINUUM_SERVER_ADDR
	EnvPrefix = "CONTINUUM"
)

// Config is the full application configuration.
type Config struct {
	Storage   StorageConfig     `mapstructure:"storage"`
	Server    ServerConfig      `mapstructure:"server"`
	Insights  InsightsConfig    `mapstructure:"insights"`
	Query     QueryConfig       `mapstructure:"query"`
	Log       logging.Config    `mapstructure:"log"`
	Tagging   TaggingConfig     `mapstructure:"tagging"`
	Sentiment sentiment.Lexicon `mapstructure:"sentiment"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
	Key  string `mapstructure:"key"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type InsightsConfig struct {
	Latency time.Duration `mapstructure:"latency"`
	Rules   insight.Rules `mapstructure:"rules"`
}

type QueryConfig struct {
	ItemsPerPage int `mapstructure:"items_per_page"`
}

// TaggingConfig overrides the classifier rule table when Rules is non-empty.
type TaggingConfig struct {
	Rules []classifier.Rule `mapstructure:"rules"`
}

// Load reads ~/.continuum/config.yaml, or path when given. A missing default
// file yields the defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(expandPath(path))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(userHomeDir(), DefaultConfigDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Storage.Path = expandPath(cfg.Storage.Path)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Storage:  StorageConfig{Path: defaultDBPath(), Key: store.DefaultKey},
		Server:   ServerConfig{Addr: ":8080"},
		Insights: InsightsConfig{Latency: insight.DefaultLatency},
		Query:    QueryConfig{ItemsPerPage: 5},
		Log:      logging.Config{Level: "info", Format: "console"},
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("insights.latency", d.Insights.Latency)
	v.SetDefault("query.items_per_page", d.Query.ItemsPerPage)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if cfg.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if cfg.Insights.Latency < 0 {
		return fmt.Errorf("insights.latency must not be negative, got %s", cfg.Insights.Latency)
	}
	if cfg.Query.ItemsPerPage < 1 {
		return fmt.Errorf("query.items_per_page must be at least 1, got %d", cfg.Query.ItemsPerPage)
	}
	for i, r := range cfg.Tagging.Rules {
		if strings.TrimSpace(r.Tag) == "" || len(r.Keywords) == 0 {
			return fmt.Errorf("tagging.rules[%d] needs a tag and at least one keyword", i)
		}
	}
	if err := cfg.Log.Validate(); err != nil {
		return err
	}
	return nil
}

func defaultDBPath() string {
	return filepath.Join(userHomeDir(), DefaultConfigDir, "continuum.db")
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return path
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
