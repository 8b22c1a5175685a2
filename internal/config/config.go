package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API    APIConfig    `yaml:"api" mapstructure:"api"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// APIConfig configures the registry client.
type APIConfig struct {
	Key             string  `yaml:"key" mapstructure:"key"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts     int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBaseSecs int     `yaml:"backoff_base_secs" mapstructure:"backoff_base_secs"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	TestSIRET       string  `yaml:"test_siret" mapstructure:"test_siret"`
}

// Timeout returns the per-request timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// BackoffBase returns the linear backoff unit between attempts. Zero means
// retries are not spaced.
func (c APIConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseSecs) * time.Second
}

// CacheConfig configures the company record cache.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	TTLSecs     int    `yaml:"ttl_secs" mapstructure:"ttl_secs"`
	Prefix      string `yaml:"prefix" mapstructure:"prefix"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	// PurgeIntervalMins controls how often serve removes expired entries.
	// Zero disables the sweep.
	PurgeIntervalMins int `yaml:"purge_interval_mins" mapstructure:"purge_interval_mins"`
}

// TTL returns the default cache lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SIREN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.key", "")
	v.SetDefault("api.base_url", "https://data.siren-api.fr")
	v.SetDefault("api.timeout_secs", 10)
	v.SetDefault("api.max_attempts", 3)
	v.SetDefault("api.backoff_base_secs", 2)
	v.SetDefault("api.rate_limit_rps", 0)
	v.SetDefault("api.test_siret", "73282932000074")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl_secs", 86400)
	v.SetDefault("cache.prefix", "siren_data_")
	v.SetDefault("cache.sqlite_path", "siren-cache.db")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.purge_interval_mins", 60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late, at request time.
// A missing API key is not an error here: the client reports it per call.
func (c *Config) Validate() error {
	var problems []string
	if c.API.TimeoutSecs <= 0 {
		problems = append(problems, "api.timeout_secs must be positive")
	}
	if c.API.MaxAttempts <= 0 {
		problems = append(problems, "api.max_attempts must be positive")
	}
	if c.API.BackoffBaseSecs < 0 {
		problems = append(problems, "api.backoff_base_secs must not be negative")
	}
	if c.API.RateLimitRPS < 0 {
		problems = append(problems, "api.rate_limit_rps must not be negative")
	}
	if c.Cache.TTLSecs <= 0 {
		problems = append(problems, "cache.ttl_secs must be positive")
	}
	switch c.Cache.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Cache.DatabaseURL == "" {
			problems = append(problems, "cache.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "cache.driver must be one of memory, sqlite, postgres")
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateServe checks the settings needed by the HTTP server.
func (c *Config) ValidateServe() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	return nil
}

// NewLogger builds a zap logger: JSON production output unless the format
// is "console".
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}
