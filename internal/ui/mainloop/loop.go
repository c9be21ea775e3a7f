// Package mainloop provides the single-consumer task queue that owns all
// UI-affine state, plus helpers for posting work onto it.
package mainloop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bnema/webbridge/internal/logging"
)

var (
	// ErrLoopStarted is returned by a second Start or Run.
	ErrLoopStarted = errors.New("mainloop: already started")
	// ErrLoopStopped is returned when posting to a stopped loop.
	ErrLoopStopped = errors.New("mainloop: stopped")
)

const noOwner int64 = -1

// Loop runs posted tasks one at a time, in submission order, on a goroutine
// locked to a single OS thread. Tasks posted before the loop starts are
// buffered and run once it does.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	started bool
	stopped bool

	owner atomic.Int64
	done  chan struct{}
	ctx   context.Context
}

// New creates a stopped loop. ctx carries the logger used for task failures.
func New(ctx context.Context) *Loop {
	if ctx == nil {
		ctx = context.Background()
	}
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		ctx:  logging.WithComponent(ctx, "mainloop"),
	}
	l.owner.Store(noOwner)
	return l
}

// Post queues fn. It never blocks and may be called from any goroutine.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Invoke runs fn on the loop and waits for its result. Called from the loop
// itself, fn runs inline.
func (l *Loop) Invoke(ctx context.Context, fn func() error) error {
	if l.IsOwner() {
		return fn()
	}

	result := make(chan error, 1)
	err := l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("mainloop: task panicked: %v", r)
			}
		}()
		result <- fn()
	})
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopStopped
		}
	}
}

// IsOwner reports whether the caller is running on the loop goroutine.
func (l *Loop) IsOwner() bool {
	owner := l.owner.Load()
	return owner != noOwner && owner == currentThreadID()
}

// Start runs the loop on a new goroutine and returns once it owns its thread.
func (l *Loop) Start(ctx context.Context) error {
	ready := make(chan error, 1)
	go func() {
		_ = l.run(ctx, ready)
	}()
	return <-ready
}

// Run runs the loop on the calling goroutine until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	return l.run(ctx, nil)
}

// Stop makes the loop exit after running the tasks already queued.
// Later posts fail with ErrLoopStopped.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	started := l.started
	l.mu.Unlock()

	if !started {
		close(l.done)
		return
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed once the loop has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run(ctx context.Context, ready chan<- error) error {
	l.mu.Lock()
	switch {
	case l.stopped:
		l.mu.Unlock()
		if ready != nil {
			ready <- ErrLoopStopped
		}
		return ErrLoopStopped
	case l.started:
		l.mu.Unlock()
		if ready != nil {
			ready <- ErrLoopStarted
		}
		return ErrLoopStarted
	}
	l.started = true
	l.mu.Unlock()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.owner.Store(currentThreadID())
	defer l.owner.Store(noOwner)
	defer close(l.done)

	log := logging.FromContext(l.ctx)
	log.Debug().Int64("thread", l.owner.Load()).Msg("main loop started")

	if ready != nil {
		ready <- nil
	}

	for {
		task, stopped := l.next()
		if task != nil {
			l.runTask(task)
			continue
		}
		if stopped {
			log.Debug().Msg("main loop stopped")
			return nil
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.mu.Unlock()
			l.drain()
			log.Debug().Err(ctx.Err()).Msg("main loop context done")
			return ctx.Err()
		}
	}
}

// next pops the oldest task. With an empty queue it reports whether the loop
// is stopped, read under the same lock so no accepted post is left behind.
func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, l.stopped
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, false
}

func (l *Loop) drain() {
	for {
		task, _ := l.next()
		if task == nil {
			return
		}
		l.runTask(task)
	}
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log := logging.FromContext(l.ctx)
			log.Error().Interface("panic", r).Msg("main loop task panicked")
		}
	}()
	task()
}
