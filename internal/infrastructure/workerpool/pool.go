// Package workerpool runs fire-and-forget tasks on a bounded set of worker
// goroutines that retire after sitting idle.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/logging"
)

// ErrPoolClosed is returned by Submit after Shutdown.
var ErrPoolClosed = errors.New("workerpool: closed")

const (
	defaultMaxWorkers  = 20
	defaultIdleTimeout = 30 * time.Second
)

// Config configures the pool.
type Config struct {
	// MaxWorkers bounds the number of tasks executing at once.
	MaxWorkers int
	// IdleTimeout is how long a worker waits for work before exiting.
	IdleTimeout time.Duration
}

// DefaultConfig returns the default pool sizing.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:  defaultMaxWorkers,
		IdleTimeout: defaultIdleTimeout,
	}
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	MaxWorkers int
	Live       int
	Idle       int
	Active     int
	Queued     int
	Peak       int
	Completed  uint64
	Panicked   uint64
	Discarded  uint64
}

// Pool is a bounded worker pool. The zero value is not usable; use New.
type Pool struct {
	mu     sync.Mutex
	cfg    Config
	queue  []port.Task
	idle   []*idler
	live   int
	active int
	peak   int
	closed bool

	completed uint64
	panicked  uint64
	discarded uint64

	quit chan struct{}
	wg   sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// idler is a parked worker waiting for a wake-up.
type idler struct {
	wake chan struct{}
}

var _ port.Executor = (*Pool)(nil)

// New creates a pool. ctx is handed to every task and carries the logger;
// it is cancelled only if Shutdown gives up waiting.
func New(ctx context.Context, cfg Config) *Pool {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}

	taskCtx, cancel := context.WithCancel(logging.WithComponent(ctx, "workerpool"))
	p := &Pool{
		cfg:    cfg,
		quit:   make(chan struct{}),
		ctx:    taskCtx,
		cancel: cancel,
	}

	log := logging.FromContext(taskCtx)
	log.Debug().
		Int("max_workers", cfg.MaxWorkers).
		Dur("idle_timeout", cfg.IdleTimeout).
		Msg("worker pool created")
	return p
}

// Submit queues task. It never blocks: when every worker is busy the task
// waits in the queue.
func (p *Pool) Submit(task port.Task) error {
	if task == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.queue = append(p.queue, task)
	p.dispatchLocked()
	return nil
}

// dispatchLocked wakes an idle worker or starts a new one if the pool has room.
func (p *Pool) dispatchLocked() {
	if n := len(p.idle); n > 0 {
		w := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		w.wake <- struct{}{}
		return
	}
	if p.live < p.cfg.MaxWorkers {
		p.live++
		p.wg.Add(1)
		go p.worker()
	}
}

// SetMaxWorkers changes the concurrency bound. Lowering it lets surplus
// workers exit as they finish their current task.
func (p *Pool) SetMaxWorkers(n int) {
	if n <= 0 {
		n = defaultMaxWorkers
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if n == p.cfg.MaxWorkers || p.closed {
		return
	}
	p.cfg.MaxWorkers = n

	for queued := len(p.queue); queued > 0 && p.live < n; queued-- {
		p.live++
		p.wg.Add(1)
		go p.worker()
	}
	// parked workers above the bound wake up and retire in take
	for surplus := p.live - n; surplus > 0 && len(p.idle) > 0; surplus-- {
		w := p.idle[len(p.idle)-1]
		p.idle[len(p.idle)-1] = nil
		p.idle = p.idle[:len(p.idle)-1]
		w.wake <- struct{}{}
	}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		MaxWorkers: p.cfg.MaxWorkers,
		Live:       p.live,
		Idle:       len(p.idle),
		Active:     p.active,
		Queued:     len(p.queue),
		Peak:       p.peak,
		Completed:  p.completed,
		Panicked:   p.panicked,
		Discarded:  p.discarded,
	}
}

// Shutdown stops accepting tasks, discards queued tasks that have not
// started, and waits for running tasks to finish. If ctx expires first the
// task context is cancelled and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	dropped := len(p.queue)
	p.discarded += uint64(dropped)
	p.queue = nil
	close(p.quit)
	p.mu.Unlock()

	log := logging.FromContext(p.ctx)
	if dropped > 0 {
		log.Warn().Int("discarded", dropped).Msg("discarding queued tasks on shutdown")
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		log.Debug().Msg("worker pool drained")
		return nil
	case <-ctx.Done():
		p.cancel()
		log.Warn().Err(ctx.Err()).Msg("worker pool shutdown timed out")
		return ctx.Err()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	self := &idler{wake: make(chan struct{}, 1)}
	timer := time.NewTimer(p.idleTimeout())
	defer timer.Stop()

	for {
		task, ok := p.take(self)
		if !ok {
			return
		}
		if task != nil {
			p.run(task)
			continue
		}

		// parked: take() pushed self onto p.idle
		resetTimer(timer, p.idleTimeout())
		select {
		case <-self.wake:
		case <-p.quit:
			p.unpark(self)
		case <-timer.C:
			if p.retire(self) {
				return
			}
		}
	}
}

// take pops the next task. With an empty queue it parks self and returns
// (nil, true); it returns (nil, false) when the worker must exit.
func (p *Pool) take(self *idler) (port.Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.live > p.cfg.MaxWorkers {
		p.live--
		return nil, false
	}
	if len(p.queue) > 0 {
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.active++
		if p.active > p.peak {
			p.peak = p.active
		}
		return task, true
	}
	if p.closed {
		p.live--
		return nil, false
	}
	p.idle = append(p.idle, self)
	return nil, true
}

// unpark removes self from the idle stack if a dispatcher has not already
// claimed it, and drains a pending wake-up otherwise.
func (p *Pool) unpark(self *idler) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, w := range p.idle {
		if w == self {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			return true
		}
	}
	select {
	case <-self.wake:
	default:
	}
	return false
}

// retire exits the worker after an idle timeout, unless a dispatcher woke
// it at the same moment.
func (p *Pool) retire(self *idler) bool {
	if !p.unpark(self) {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) > 0 && !p.closed {
		return false
	}
	p.live--
	return true
}

func (p *Pool) run(task port.Task) {
	panicked := false
	defer func() {
		p.mu.Lock()
		p.active--
		if panicked {
			p.panicked++
		} else {
			p.completed++
		}
		p.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			log := logging.FromContext(p.ctx)
			log.Error().Interface("panic", r).Msg("worker task panicked")
		}
	}()

	task(p.ctx)
}

func (p *Pool) idleTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.IdleTimeout
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
