package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/bootstrap"
	"github.com/bnema/webbridge/internal/infrastructure/config"
	"github.com/bnema/webbridge/internal/infrastructure/metrics"
	"github.com/bnema/webbridge/internal/logging"
)

var (
	runTimeout     time.Duration
	runMetricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run <script.js|url>",
	Short: "Run a script in a host view with the demo bindings",
	Long: `Start a host (UI loop, worker pool, content engine and view), bind the demo
functions and load the given script. The script reaches the host through the
injected client:

  const sum = await webbridge.invoke('add', {a: 2, b: 3})
  webbridge.invokeSync('echo', 'hi')
  webbridge.quit(sum === 5 ? 0 : 1)

Bound functions: echo, add, sleep, fail, now, cookie.

The run ends when the script calls quit (its code becomes the exit status),
when --timeout elapses, or on SIGINT/SIGTERM.

Examples:
  webbridge run demo.js
  webbridge run --timeout 30s --metrics-addr 127.0.0.1:9464 demo.js`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "stop the run after this duration (0 waits for quit)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.listen_address)")
}

func runRun(cmd *cobra.Command, args []string) (retErr error) {
	app, err := requireApp()
	if err != nil {
		return err
	}
	cfg := app.Config

	var store port.SessionStore
	if app.Sessions != nil {
		store = app.Sessions
	}
	session, ctx, err := bootstrap.StartSession(cmd.Context(), cfg, store)
	if err != nil {
		return err
	}
	defer func() {
		if endErr := session.End(context.WithoutCancel(ctx)); endErr != nil && retErr == nil {
			retErr = fmt.Errorf("end session: %w", endErr)
		}
	}()
	log := logging.Component(ctx, "run")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	var journal port.CallJournal
	if j := app.Journal(ctx); j != nil {
		journal = j
		// Flush before the session log is closed.
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("journal flush failed")
			}
			if dropped := j.Dropped(); dropped > 0 {
				log.Warn().Uint64("dropped", dropped).Msg("journal dropped records")
			}
		}()
	}

	m := metrics.New()
	if addr, ok := metricsAddress(cfg, runMetricsAddr); ok {
		go func() {
			if err := m.Serve(ctx, addr); err != nil {
				log.Warn().Err(err).Msg("metrics endpoint stopped")
			}
		}()
	}

	host, err := bootstrap.NewHost(ctx, bootstrap.HostOptions{
		Config:    cfg,
		SessionID: session.Session.ID,
		Journal:   journal,
		Metrics:   m,
	})
	if err != nil {
		return fmt.Errorf("start host: %w", err)
	}
	defer func() {
		if shutdownErr := host.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			log.Warn().Err(shutdownErr).Msg("shutdown incomplete")
		}
	}()

	if err := bootstrap.RegisterDemoBindings(host.View()); err != nil {
		return fmt.Errorf("bind demo functions: %w", err)
	}

	app.Manager.OnConfigChange(host.ApplyConfig)
	if err := app.Manager.Watch(); err != nil {
		log.Warn().Err(err).Msg("config hot reload unavailable")
	}

	code, err := host.Run(ctx, args[0])
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.Info().Dur("timeout", runTimeout).Msg("run timed out")
	case errors.Is(err, context.Canceled):
		log.Info().Msg("run interrupted")
	case err != nil:
		return err
	}

	if code != 0 {
		return &ExitCodeError{Code: code}
	}
	return nil
}

// metricsAddress returns the address the metrics endpoint listens on and
// whether it is enabled. A flag value enables it regardless of the config.
func metricsAddress(cfg *config.Config, flagAddr string) (string, bool) {
	if flagAddr != "" {
		return flagAddr, true
	}
	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress != "" {
		return cfg.Metrics.ListenAddress, true
	}
	return "", false
}
