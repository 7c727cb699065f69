package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/yaron8/latency-metrics/logi"
)

type Config struct {
	Port             int      `mapstructure:"port"`
	Seed             uint64   `mapstructure:"seed"`
	Regions          []string `mapstructure:"regions"`
	RecordsPerRegion int      `mapstructure:"records_per_region"`
	LogDir           string   `mapstructure:"log_dir"`
	LogLevel         string   `mapstructure:"log_level"`
}

// Logi converts the log settings for logi.NewLog.
func (c *Config) Logi() *logi.Config {
	return &logi.Config{
		LogDir:      c.LogDir,
		LogFileName: "generator.log",
		Level:       c.LogLevel,
		Stdout:      true,
	}
}

// NewConfig reads defaults overridden by PORT, SEED, REGIONS,
// RECORDS_PER_REGION, LOG_DIR and LOG_LEVEL.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("port", 9001)
	v.SetDefault("seed", 42)
	v.SetDefault("regions", []string{"apac", "emea", "amer"})
	v.SetDefault("records_per_region", 12)
	v.SetDefault("log_dir", "")
	v.SetDefault("log_level", "info")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Regions) == 0 {
		return nil, fmt.Errorf("at least one region is required")
	}
	if cfg.RecordsPerRegion <= 0 {
		return nil, fmt.Errorf("records_per_region must be positive, got %d", cfg.RecordsPerRegion)
	}

	return &cfg, nil
}
