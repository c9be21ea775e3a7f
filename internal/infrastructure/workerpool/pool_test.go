package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

func newTestPool(t *testing.T, cfg Config) *Pool {
	t.Helper()
	p := New(context.Background(), cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})
	return p
}

func TestPoolNeverExceedsMaxWorkers(t *testing.T) {
	const maxWorkers = 5
	p := newTestPool(t, Config{MaxWorkers: maxWorkers, IdleTimeout: time.Second})

	sem := semaphore.NewWeighted(maxWorkers)
	var violations atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 60; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func(context.Context) {
			defer wg.Done()
			if !sem.TryAcquire(1) {
				violations.Add(1)
				return
			}
			time.Sleep(5 * time.Millisecond)
			sem.Release(1)
		}))
	}
	wg.Wait()

	assert.Zero(t, violations.Load(), "more tasks ran at once than the pool allows")
	assert.LessOrEqual(t, p.Stats().Peak, maxWorkers)
}

func TestPoolRunsTasksConcurrently(t *testing.T) {
	p := newTestPool(t, Config{MaxWorkers: 20, IdleTimeout: time.Second})

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func(context.Context) {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
		}))
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ceil(50/20) rounds of 10ms; serial execution would take 500ms
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	p := newTestPool(t, Config{MaxWorkers: 1, IdleTimeout: time.Second})

	require.NoError(t, p.Submit(func(context.Context) { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool stopped running tasks after a panic")
	}

	assert.Eventually(t, func() bool {
		s := p.Stats()
		return s.Panicked == 1 && s.Completed == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPoolRetiresIdleWorkers(t *testing.T) {
	p := newTestPool(t, Config{MaxWorkers: 4, IdleTimeout: 20 * time.Millisecond})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func(context.Context) {
			defer wg.Done()
			time.Sleep(5 * time.Millisecond)
		}))
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		return p.Stats().Live == 0
	}, time.Second, 5*time.Millisecond)

	// a retired pool still accepts work
	done := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) { close(done) }))
	<-done
}

func TestPoolShutdownDiscardsQueuedAndWaitsForRunning(t *testing.T) {
	p := New(context.Background(), Config{MaxWorkers: 1, IdleTimeout: time.Second})

	release := make(chan struct{})
	started := make(chan struct{})
	var ran atomic.Int32

	require.NoError(t, p.Submit(func(context.Context) {
		close(started)
		<-release
		ran.Add(1)
	}))
	<-started
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(func(context.Context) { ran.Add(1) }))
	}

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- p.Shutdown(context.Background()) }()

	assert.Eventually(t, func() bool {
		return p.Stats().Discarded == 5
	}, time.Second, time.Millisecond)
	close(release)

	require.NoError(t, <-shutdownErr)
	assert.Equal(t, int32(1), ran.Load())
	assert.ErrorIs(t, p.Submit(func(context.Context) {}), ErrPoolClosed)
	assert.Zero(t, p.Stats().Live)
}

func TestPoolShutdownTimeoutCancelsTaskContext(t *testing.T) {
	p := New(context.Background(), Config{MaxWorkers: 1, IdleTimeout: time.Second})

	started := make(chan struct{})
	cancelled := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Shutdown(ctx), context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled after shutdown timeout")
	}
}

func TestPoolSetMaxWorkersGrowsConcurrency(t *testing.T) {
	p := newTestPool(t, Config{MaxWorkers: 1, IdleTimeout: time.Second})

	release := make(chan struct{})
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(func(context.Context) { <-release }))
	}
	assert.Eventually(t, func() bool { return p.Stats().Active == 1 }, time.Second, time.Millisecond)

	p.SetMaxWorkers(3)
	assert.Eventually(t, func() bool { return p.Stats().Active == 3 }, time.Second, time.Millisecond)
	close(release)
}

func TestPoolSetMaxWorkersShrinksParkedWorkers(t *testing.T) {
	p := newTestPool(t, Config{MaxWorkers: 4, IdleTimeout: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func(context.Context) {
			defer wg.Done()
			time.Sleep(5 * time.Millisecond)
		}))
	}
	wg.Wait()

	p.SetMaxWorkers(1)
	assert.Eventually(t, func() bool { return p.Stats().Live <= 1 }, time.Second, time.Millisecond)
}

func TestPoolConcurrentSubmitters(t *testing.T) {
	p := newTestPool(t, Config{MaxWorkers: 8, IdleTimeout: time.Second})

	var done atomic.Int64
	var wg sync.WaitGroup
	var g errgroup.Group
	for s := 0; s < 10; s++ {
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				wg.Add(1)
				if err := p.Submit(func(context.Context) {
					defer wg.Done()
					done.Add(1)
				}); err != nil {
					wg.Done()
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	wg.Wait()

	assert.Equal(t, int64(1000), done.Load())
}

func TestNewAppliesDefaults(t *testing.T) {
	p := newTestPool(t, Config{})
	assert.Equal(t, DefaultConfig().MaxWorkers, p.Stats().MaxWorkers)
}
