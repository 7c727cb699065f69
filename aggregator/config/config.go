package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yaron8/latency-metrics/logi"
)

type Config struct {
	Port            int           `mapstructure:"port"`
	DataSource      string        `mapstructure:"data_source"` // file path or http(s) URL
	LoadTimeout     time.Duration `mapstructure:"load_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Server          ServerConfig  `mapstructure:"server"`
	Redis           RedisConfig   `mapstructure:"redis"`
	CORS            CORSConfig    `mapstructure:"cors"`
	Metrics         MetricsConfig `mapstructure:"metrics"`
	Log             LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	TTL            time.Duration `mapstructure:"ttl"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Level      string `mapstructure:"level"`
	Stdout     bool   `mapstructure:"stdout"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Addr is the listen address for the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Logi converts the log section for logi.NewLog.
func (c *Config) Logi() *logi.Config {
	return &logi.Config{
		LogDir:      c.Log.Dir,
		LogFileName: "aggregator.log",
		Level:       c.Log.Level,
		Stdout:      c.Log.Stdout,
		MaxSizeMB:   c.Log.MaxSizeMB,
		MaxBackups:  c.Log.MaxBackups,
		MaxAgeDays:  c.Log.MaxAgeDays,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("data_source", "data/q-vercel-latency.json")
	v.SetDefault("load_timeout", 10*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.ttl", 30*time.Second)
	v.SetDefault("redis.connect_timeout", 5*time.Second)

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)

	v.SetDefault("metrics.path", "/internal/metrics")

	v.SetDefault("log.dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// NewConfig builds the configuration from defaults, an optional YAML file
// named by CONFIG_FILE, and environment variables (REDIS_HOST, LOG_LEVEL,
// DATA_SOURCE, ...), in increasing priority.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DataSource == "" {
		return fmt.Errorf("data_source is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be positive when redis is enabled")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	if _, err := logi.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
