package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func memoryDSN(t *testing.T) string {
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
}

func TestNewClientSQLite(t *testing.T) {
	c, err := NewClient(WithDriver(DriverSQLite), WithDSN(memoryDSN(t)))
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Health(ctx))
	require.NoError(t, c.Migrate(ctx, &probe{}))
	require.NoError(t, c.DB().Create(&probe{Name: "x"}).Error)

	var n int64
	require.NoError(t, c.DB().Model(&probe{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, DriverSQLite, c.Driver())
}

func TestNewClientRejectsUnknownDriver(t *testing.T) {
	_, err := NewClient(WithDriver("oracle"), WithDSN("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestNewClientRequiresDSN(t *testing.T) {
	_, err := NewClient(WithDSN(""))
	require.Error(t, err)
}
