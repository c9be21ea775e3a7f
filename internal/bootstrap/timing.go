package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/internal/logging"
)

// StartupTimer tracks how long each host startup phase took.
type StartupTimer struct {
	mu     sync.Mutex
	start  time.Time
	last   time.Time
	phases []phase
}

type phase struct {
	name string
	dur  time.Duration
}

// NewStartupTimer creates a new timer starting from now.
func NewStartupTimer() *StartupTimer {
	now := time.Now()
	return &StartupTimer{start: now, last: now}
}

// Mark records the duration since the last mark (or start) for the given phase.
func (t *StartupTimer) Mark(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.phases = append(t.phases, phase{name: name, dur: now.Sub(t.last)})
	t.last = now
}

// Phases returns the recorded durations keyed by phase name.
func (t *StartupTimer) Phases() map[string]time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]time.Duration, len(t.phases))
	for _, p := range t.phases {
		out[p.name] += p.dur
	}
	return out
}

// Total returns the total elapsed time since timer creation.
func (t *StartupTimer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Since(t.start)
}

// Log writes every phase as one debug line.
func (t *StartupTimer) Log(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := logging.FromContext(ctx)
	event := log.WithLevel(zerolog.DebugLevel).Dur("total", time.Since(t.start))
	for _, p := range t.phases {
		event = event.Dur(p.name, p.dur)
	}
	event.Msg("startup timing")
}
