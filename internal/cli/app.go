// Package cli wires the dependencies shared by the webbridge commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bnema/webbridge/internal/cli/styles"
	"github.com/bnema/webbridge/internal/domain/build"
	"github.com/bnema/webbridge/internal/infrastructure/config"
	"github.com/bnema/webbridge/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/webbridge/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config  *config.Config
	Manager *config.Manager
	// ConfigErr is the load error when Config fell back to the defaults.
	ConfigErr error
	Theme     *styles.Theme
	BuildInfo build.Info

	// Sessions is nil when the journal is disabled.
	Sessions *sqlite.SessionRepository

	db      *sqlite.LazyDB
	journal *sqlite.Journal

	// Context with logger
	ctx        context.Context
	logCleanup func()
}

// NewApp creates a new CLI application with all dependencies. The database is
// opened on first use.
func NewApp() (*App, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("config manager: %w", err)
	}

	cfg := config.DefaultConfig()
	loadErr := mgr.Load()
	if loadErr == nil {
		cfg = mgr.Get()
	}

	logLevel := cfg.Logging.Level
	if envLevel := os.Getenv("WEBBRIDGE_LOG_LEVEL"); envLevel != "" {
		logLevel = envLevel
	}

	// Commands log to stderr only; `run` replaces this with a session logger.
	logger, logCleanup, _ := logging.NewWithFile(
		logging.Config{Level: logging.ParseLevel(logLevel), Format: cfg.Logging.Format, TimeFormat: "15:04:05"},
		logging.FileConfig{Enabled: false, WriteToStderr: true},
	)
	ctx := logging.WithContext(context.Background(), logger)
	if loadErr != nil {
		logger.Warn().Err(loadErr).Msg("using default configuration")
	}

	app := &App{
		Config:     cfg,
		Manager:    mgr,
		ConfigErr:  loadErr,
		Theme:      styles.NewTheme(),
		ctx:        ctx,
		logCleanup: logCleanup,
	}

	if cfg.Journal.Enabled {
		app.db = sqlite.NewLazyDB(cfg.Journal.Path)
		app.Sessions = sqlite.NewSessionRepository(app.db)
		logger.Debug().Str("db_path", cfg.Journal.Path).Msg("journal configured")
	}

	return app, nil
}

// Journal returns the call journal, starting its writer on first use. Records
// are logged through the logger carried by ctx. It returns nil when the
// journal is disabled.
func (a *App) Journal(ctx context.Context) *sqlite.Journal {
	if a.db == nil {
		return nil
	}
	if a.journal == nil {
		a.journal = sqlite.NewJournal(ctx, a.db, sqlite.JournalOptions{MaxEntries: a.Config.Journal.MaxEntries})
	}
	return a.journal
}

// Close flushes the journal and releases all resources.
func (a *App) Close() error {
	var err error
	if a.journal != nil {
		err = a.journal.Close()
		a.journal = nil
	}
	if a.db != nil {
		if closeErr := a.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if a.logCleanup != nil {
		a.logCleanup()
		a.logCleanup = nil
	}
	return err
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}
