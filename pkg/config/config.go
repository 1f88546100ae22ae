package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowRequest     time.Duration `yaml:"slow_request"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Database struct {
		Driver          string        `yaml:"driver"`
		DSN             string        `yaml:"dsn"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		SlowQuery       time.Duration `yaml:"slow_query"`
	} `yaml:"database"`
	Provider struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		Model       string        `yaml:"model"`
		Timeout     time.Duration `yaml:"timeout"`
		Temperature float64       `yaml:"temperature"`
	} `yaml:"provider"`
	Signals struct {
		Lookahead time.Duration `yaml:"lookahead"`
		Rounding  string        `yaml:"rounding"`
	} `yaml:"signals"`
	Notify struct {
		Timeout     time.Duration `yaml:"timeout"`
		MaxInFlight int           `yaml:"max_in_flight"`
		DedupTTL    time.Duration `yaml:"dedup_ttl"`
		Drain       time.Duration `yaml:"drain"`
		TelegramURL string        `yaml:"telegram_url"`
	} `yaml:"notify"`
	RateLimit struct {
		Burst     float64 `yaml:"burst"`
		PerSecond float64 `yaml:"per_second"`
	} `yaml:"ratelimit"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
		PoolSize int    `yaml:"pool_size"`
		MinIdle  int    `yaml:"min_idle_conns"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		ClientID     string        `yaml:"client_id"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"kafka"`
	Scheduler struct {
		AutoTradingSpec string `yaml:"auto_trading_spec"`
	} `yaml:"scheduler"`
	Calendar struct {
		URL     string        `yaml:"url"`
		Spec    string        `yaml:"spec"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"calendar"`
	Seed struct {
		Demo bool `yaml:"demo"`
	} `yaml:"seed"`
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	var c Config
	c.Environment = "development"
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 5000
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.SlowRequest = 5 * time.Second
	c.Server.CORSOrigins = []string{"*"}
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Database.Driver = "sqlite"
	c.Database.DSN = "fxpulse.db"
	c.Database.MaxOpenConns = 10
	c.Database.MaxIdleConns = 5
	c.Database.ConnMaxLifetime = 30 * time.Minute
	c.Database.SlowQuery = 500 * time.Millisecond
	c.Provider.Model = "gpt-4o"
	c.Provider.Timeout = 30 * time.Second
	c.Provider.Temperature = 0.2
	c.Signals.Lookahead = 2 * time.Minute
	c.Signals.Rounding = "floor"
	c.Notify.Timeout = 15 * time.Second
	c.Notify.MaxInFlight = 32
	c.Notify.DedupTTL = 10 * time.Minute
	c.Notify.Drain = 10 * time.Second
	c.RateLimit.Burst = 5
	c.RateLimit.PerSecond = 0.2
	c.Redis.Addr = "localhost:6379"
	c.Redis.Prefix = "fxpulse"
	c.Redis.PoolSize = 10
	c.Redis.MinIdle = 2
	c.Kafka.Topic = "fxpulse.signals"
	c.Kafka.ClientID = "fxpulse"
	c.Kafka.RequiredAcks = 1
	c.Kafka.Compression = "snappy"
	c.Kafka.MaxAttempts = 3
	c.Kafka.WriteTimeout = 10 * time.Second
	c.Kafka.BatchTimeout = 50 * time.Millisecond
	c.Scheduler.AutoTradingSpec = "0 */5 * * * *"
	c.Calendar.Spec = "@every 30m"
	c.Calendar.Timeout = 20 * time.Second
	return &c
}

// Load reads a YAML configuration file over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := get("DATABASE_DRIVER"); ok {
		c.Database.Driver = v
	}
	if v, ok := get("DATABASE_DSN"); ok {
		c.Database.DSN = v
	}
	if v, ok := get("OPENAI_API_KEY"); ok {
		c.Provider.APIKey = v
	}
	if v, ok := get("OPENAI_BASE_URL"); ok {
		c.Provider.BaseURL = v
	}
	if v, ok := get("OPENAI_MODEL"); ok {
		c.Provider.Model = v
	}
	if v, ok := get("REDIS_ADDR"); ok {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v, ok := get("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("CALENDAR_URL"); ok {
		c.Calendar.URL = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got '%s'", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch c.Signals.Rounding {
	case "floor", "ceil":
	default:
		return fmt.Errorf("signals.rounding must be 'floor' or 'ceil', got '%s'", c.Signals.Rounding)
	}
	if c.Signals.Lookahead < 0 {
		return fmt.Errorf("signals.lookahead cannot be negative")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if c.Redis.PoolSize < 0 || c.Redis.MinIdle < 0 {
		return fmt.Errorf("redis.pool_size and redis.min_idle_conns cannot be negative")
	}
	return nil
}
