package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	applogger "FxPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerFiresJobs(t *testing.T) {
	r := New(applogger.Nop(), context.Background())
	var ok, failed int32
	_, err := r.Add("ok", "@every 1s", func(context.Context) error {
		atomic.AddInt32(&ok, 1)
		return nil
	})
	require.NoError(t, err)
	_, err = r.Add("fail", "@every 1s", func(context.Context) error {
		atomic.AddInt32(&failed, 1)
		return errors.New("nope")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	r.Start()
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&ok) > 0 && atomic.LoadInt32(&failed) > 0
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
}

func TestRunnerRejectsBadSpec(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Add("bad", "not a spec", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestStopCancelsJobContext(t *testing.T) {
	r := New(applogger.Nop(), context.Background())
	started := make(chan struct{})
	var once int32
	_, err := r.Add("slow", "@every 1s", func(ctx context.Context) error {
		if atomic.CompareAndSwapInt32(&once, 0, 1) {
			close(started)
		}
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)
	r.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, r.Stop(ctx))
}
