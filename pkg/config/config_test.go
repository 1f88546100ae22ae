package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, 30*time.Second, c.Provider.Timeout)
	assert.Equal(t, "0 */5 * * * *", c.Scheduler.AutoTradingSpec)
	assert.Equal(t, "fxpulse.signals", c.Kafka.Topic)
	assert.Equal(t, 10, c.Redis.PoolSize)
	assert.Equal(t, 2, c.Redis.MinIdle)
}

func TestLoadRedisPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redis:\n  pool_size: 40\n  min_idle_conns: 8\n"), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, c.Redis.PoolSize)
	assert.Equal(t, 8, c.Redis.MinIdle)

	require.NoError(t, os.WriteFile(path, []byte("redis:\n  pool_size: -1\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8081\nsignals:\n  rounding: ceil\n  lookahead: 0s\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, c.Server.Port)
	assert.Equal(t, "ceil", c.Signals.Rounding)
	assert.Zero(t, c.Signals.Lookahead)
	assert.Equal(t, "gpt-4o", c.Provider.Model, "untouched keys keep defaults")
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: mysql\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":           "9000",
		"OPENAI_API_KEY": "sk-test",
		"KAFKA_BROKERS":  "k1:9092,k2:9092",
		"REDIS_ADDR":     "redis:6379",
		"LOG_LEVEL":      "debug",
		"CALENDAR_URL":   "http://feed",
		"DATABASE_DSN":   "",
	}
	c := Default()
	require.NoError(t, c.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, "sk-test", c.Provider.APIKey)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "http://feed", c.Calendar.URL)
	assert.Equal(t, "fxpulse.db", c.Database.DSN, "empty values are ignored")

	bad := Default()
	assert.Error(t, bad.applyEnv(func(k string) (string, bool) {
		if k == "PORT" {
			return "abc", true
		}
		return "", false
	}))
}
