package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 10, 10, hour, minute, 0, 0, Location)
}

func TestCurrentExamples(t *testing.T) {
	assert.Equal(t, Asian, Current(at(9, 15)))
	assert.Equal(t, LunchBreak, Current(at(17, 30)))
	assert.Equal(t, London, Current(at(12, 0)))
	assert.Equal(t, NewYork, Current(at(22, 59)))
	assert.Equal(t, NightBreak, Current(at(23, 0)))
	assert.Equal(t, NightBreak, Current(at(6, 59)))
	assert.Equal(t, Asian, Current(at(7, 0)))
}

func TestCurrentUsesFixedOffset(t *testing.T) {
	// 06:15 UTC is 09:15 at UTC+3.
	now := time.Date(2024, 10, 10, 6, 15, 0, 0, time.UTC)
	assert.Equal(t, Asian, Current(now))
}

func TestTablePartitionsDay(t *testing.T) {
	covered := make([]int, 24)
	for _, s := range table {
		require.True(t, s.from < s.to, "empty span %v", s)
		for h := s.from; h < s.to; h++ {
			covered[h]++
		}
	}
	for h, n := range covered {
		assert.LessOrEqual(t, n, 1, "hour %d overlaps", h)
	}

	for minute := 0; minute < 24*60; minute++ {
		now := at(0, 0).Add(time.Duration(minute) * time.Minute)
		assert.True(t, Current(now).Valid(), "no session at %s", now)
	}
}

func TestDefaultPairs(t *testing.T) {
	assert.Empty(t, DefaultPairs(LunchBreak))
	assert.Empty(t, DefaultPairs(NightBreak))
	assert.NotEmpty(t, DefaultPairs(Asian))
	assert.NotEqual(t, DefaultPairs(Asian), DefaultPairs(London))
	assert.NotEqual(t, DefaultPairs(London), DefaultPairs(NewYork))

	pairs := DefaultPairs(London)
	pairs[0] = "XXX/YYY"
	assert.NotEqual(t, "XXX/YYY", DefaultPairs(London)[0])
}
