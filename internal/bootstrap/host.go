// Package bootstrap assembles a running host: UI loop, worker pool, content
// engine and web view, plus the optional journal and metrics.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/infrastructure/config"
	"github.com/bnema/webbridge/internal/infrastructure/jsengine"
	"github.com/bnema/webbridge/internal/infrastructure/metrics"
	"github.com/bnema/webbridge/internal/infrastructure/workerpool"
	"github.com/bnema/webbridge/internal/logging"
	"github.com/bnema/webbridge/internal/ui/mainloop"
	"github.com/bnema/webbridge/internal/webview"
)

// HostOptions wires a Host.
type HostOptions struct {
	Config    *config.Config
	SessionID entity.SessionID
	Journal   port.CallJournal
	Metrics   *metrics.Metrics
}

// Host owns every runtime component of one content view.
type Host struct {
	loop    *mainloop.Loop
	pool    *workerpool.Pool
	engine  *jsengine.Engine
	view    *webview.WebView
	metrics *metrics.Metrics

	shutdownTimeout time.Duration
	log             zerolog.Logger
}

// NewHost starts the UI loop and worker pool, creates the engine and view and
// injects the configured scripts. On error everything already started is
// stopped again.
func NewHost(ctx context.Context, opts HostOptions) (h *Host, err error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := logging.Component(ctx, "host")
	timer := NewStartupTimer()

	loop := mainloop.New(ctx)
	if err := loop.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ui loop: %w", err)
	}
	timer.Mark("loop")

	pool := workerpool.New(ctx, workerpool.Config{
		MaxWorkers:  cfg.Workers.MaxWorkers,
		IdleTimeout: cfg.Workers.IdleTimeout(),
	})
	defer func() {
		if err != nil {
			_ = pool.Shutdown(context.WithoutCancel(ctx))
			loop.Stop()
		}
	}()
	timer.Mark("pool")

	engine, err := jsengine.New(ctx, jsengine.Config{
		Dispatcher:   loop,
		DevMode:      cfg.Engine.DevMode,
		ReplyTimeout: cfg.Bridge.ReplyTimeout(),
	})
	if err != nil {
		return nil, err
	}

	var bridgeMetrics port.BridgeMetrics
	if opts.Metrics != nil {
		bridgeMetrics = opts.Metrics
		if err := opts.Metrics.RegisterPool(pool.Stats); err != nil {
			return nil, err
		}
	}

	view, err := webview.New(ctx, webview.Config{
		Engine:     engine,
		Dispatcher: loop,
		Executor:   pool,
		Journal:    opts.Journal,
		Metrics:    bridgeMetrics,
		SessionID:  opts.SessionID,
	})
	if err != nil {
		_ = engine.Close()
		return nil, err
	}
	timer.Mark("view")

	for _, path := range cfg.Engine.InjectScripts {
		source, readErr := os.ReadFile(path)
		if readErr != nil {
			_ = view.Close()
			return nil, fmt.Errorf("read inject script %s: %w", path, readErr)
		}
		if injectErr := view.InjectScript(filepath.Base(path), string(source)); injectErr != nil {
			_ = view.Close()
			return nil, injectErr
		}
	}
	timer.Mark("inject")
	timer.Log(ctx)

	log.Debug().Uint64("view_id", view.ID()).Int("max_workers", cfg.Workers.MaxWorkers).Msg("host ready")

	return &Host{
		loop:            loop,
		pool:            pool,
		engine:          engine,
		view:            view,
		metrics:         opts.Metrics,
		shutdownTimeout: cfg.Bridge.ShutdownTimeout(),
		log:             log,
	}, nil
}

// View returns the host's web view.
func (h *Host) View() *webview.WebView {
	return h.view
}

// Loop returns the UI loop.
func (h *Host) Loop() *mainloop.Loop {
	return h.loop
}

// PoolStats returns the worker pool counters.
func (h *Host) PoolStats() workerpool.Stats {
	return h.pool.Stats()
}

// ApplyConfig applies the settings that can change while running.
func (h *Host) ApplyConfig(cfg *config.Config) {
	h.pool.SetMaxWorkers(cfg.Workers.MaxWorkers)
	h.log.Info().Int("max_workers", cfg.Workers.MaxWorkers).Msg("config applied")
}

// Run loads target and waits until the script quits or ctx is done. The exit
// code is the one passed to quit, or 0 when ctx ended the run.
func (h *Host) Run(ctx context.Context, target string) (int, error) {
	url, err := ResolveTarget(target)
	if err != nil {
		return 1, err
	}
	if err := h.view.LoadURL(ctx, url); err != nil {
		return 1, fmt.Errorf("load %s: %w", target, err)
	}

	select {
	case code := <-h.engine.Quit():
		h.log.Info().Int("code", code).Msg("script requested quit")
		return code, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Shutdown closes the view (the bridge stops accepting calls and the engine
// is released), drains the worker pool, then stops the UI loop once the
// replies posted by draining calls have run.
func (h *Host) Shutdown(ctx context.Context) error {
	var errs []error
	if err := h.view.Close(); err != nil {
		errs = append(errs, err)
	}

	if h.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.shutdownTimeout)
		defer cancel()
	}
	if err := h.pool.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain pool: %w", err))
	}

	h.loop.Stop()
	<-h.loop.Done()

	stats := h.pool.Stats()
	h.log.Debug().
		Uint64("completed", stats.Completed).
		Uint64("discarded", stats.Discarded).
		Uint64("panicked", stats.Panicked).
		Msg("host stopped")
	return errors.Join(errs...)
}

// ResolveTarget turns a command-line argument into an engine URL: URLs with a
// scheme pass through, anything else is taken as a script path.
func ResolveTarget(target string) (string, error) {
	target = strings.TrimSpace(target)
	switch {
	case target == "":
		return "about:blank", nil
	case strings.HasPrefix(target, "about:"), strings.HasPrefix(target, "data:"), strings.Contains(target, "://"):
		return target, nil
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("script %s: %w", target, err)
	}
	return jsengine.FileURL(target)
}
