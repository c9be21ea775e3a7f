package mainloop

import "sync"

// Poster queues a task on a loop.
type Poster interface {
	Post(fn func()) error
}

// Coalescer merges bursts of same-key tasks into a single loop task that
// runs the latest callback posted for the key.
type Coalescer struct {
	mu        sync.Mutex
	pending   map[string]bool
	callbacks map[string]func()
	loop      Poster
	destroyed bool
}

// NewCoalescer creates a coalescer posting onto loop.
func NewCoalescer(loop Poster) *Coalescer {
	if loop == nil {
		panic("mainloop.NewCoalescer: loop cannot be nil")
	}

	return &Coalescer{
		pending:   make(map[string]bool),
		callbacks: make(map[string]func()),
		loop:      loop,
	}
}

// Post schedules fn under key. If a task for key is already queued, fn
// replaces its callback and no new task is posted.
func (c *Coalescer) Post(key string, fn func()) error {
	if fn == nil || key == "" {
		return nil
	}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	c.callbacks[key] = fn
	if c.pending[key] {
		c.mu.Unlock()
		return nil
	}
	c.pending[key] = true
	c.mu.Unlock()

	err := c.loop.Post(func() { c.flush(key) })
	if err != nil {
		c.mu.Lock()
		delete(c.pending, key)
		delete(c.callbacks, key)
		c.mu.Unlock()
	}
	return err
}

func (c *Coalescer) flush(key string) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	fn := c.callbacks[key]
	delete(c.pending, key)
	delete(c.callbacks, key)
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Destroy drops pending callbacks; later posts are ignored.
func (c *Coalescer) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.pending = map[string]bool{}
	c.callbacks = map[string]func(){}
	c.mu.Unlock()
}
