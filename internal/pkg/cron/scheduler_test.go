package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsOnEachTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewScheduler(context.Background(), clock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var runs atomic.Int32
	done := make(chan struct{}, 8)
	s.AddJob("count", time.Minute, func(ctx context.Context) error {
		runs.Add(1)
		done <- struct{}{}
		return nil
	})
	s.Start()
	t.Cleanup(s.Stop)

	for i := 0; i < 3; i++ {
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(time.Minute)
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("job did not run")
		}
	}
	assert.Equal(t, int32(3), runs.Load())
}

func TestScheduler_RunOnceContinuesAfterFailure(t *testing.T) {
	s := NewScheduler(context.Background(), clockwork.NewFakeClock(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	var ran []string
	s.AddJob("fails", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "fails")
		return errors.New("boom")
	})
	s.AddJob("ok", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "ok")
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"fails", "ok"}, ran)
}
