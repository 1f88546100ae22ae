package database

import "time"

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds database configuration.
type ClientConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	LogLevel        string // silent, error, warn, info
	SlowThreshold   time.Duration
}

// WithDriver selects the SQL dialect.
func WithDriver(driver string) ClientOption {
	return func(c *ClientConfig) {
		c.Driver = driver
	}
}

// WithDSN sets the connection string. For sqlite this is a file path or a
// "file:" URI.
func WithDSN(dsn string) ClientOption {
	return func(c *ClientConfig) {
		c.DSN = dsn
	}
}

// WithMaxConnections sets max open and idle connections.
func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(c *ClientConfig) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
	}
}

// WithConnLifetime sets how long pooled connections live.
func WithConnLifetime(lifetime, idle time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.ConnMaxLifetime = lifetime
		c.ConnMaxIdleTime = idle
	}
}

// WithLogLevel sets the gorm query log level.
func WithLogLevel(level string, slow time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.LogLevel = level
		c.SlowThreshold = slow
	}
}
