package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type stubPurger struct {
	purgeFunc func(ctx context.Context, retention time.Duration) (int, error)
}

func (s *stubPurger) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if s.purgeFunc != nil {
		return s.purgeFunc(ctx, retention)
	}
	return 0, nil
}

func TestGarbageCollectorCollect(t *testing.T) {
	t.Parallel()

	t.Run("nil purger is a no-op", func(t *testing.T) {
		t.Parallel()
		gc := NewGarbageCollector(nil, time.Minute, 24*time.Hour, nil)
		if err := gc.collect(context.Background()); err != nil {
			t.Errorf("collect with nil purger: %v", err)
		}
	})

	t.Run("retention is passed through", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		purger := &stubPurger{
			purgeFunc: func(ctx context.Context, retention time.Duration) (int, error) {
				calls.Add(1)
				if retention != 24*time.Hour {
					return 0, errors.New("unexpected retention")
				}
				return 3, nil
			},
		}
		gc := NewGarbageCollector(purger, time.Minute, 24*time.Hour, nil)
		if err := gc.collect(context.Background()); err != nil {
			t.Errorf("collect: %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("PurgeOlderThan calls = %d, want 1", calls.Load())
		}
	})

	t.Run("purge errors surface", func(t *testing.T) {
		t.Parallel()
		purger := &stubPurger{
			purgeFunc: func(context.Context, time.Duration) (int, error) {
				return 0, errors.New("purge failed")
			},
		}
		gc := NewGarbageCollector(purger, time.Minute, time.Hour, nil)
		if err := gc.collect(context.Background()); err == nil {
			t.Error("expected error from collect")
		}
	})
}

func TestGarbageCollectorStartStopsOnCancel(t *testing.T) {
	t.Parallel()

	gc := NewGarbageCollector(&stubPurger{}, 24*time.Hour, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := gc.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Start() = %v, want context.Canceled", err)
	}
}
