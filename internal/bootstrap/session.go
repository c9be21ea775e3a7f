package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/infrastructure/config"
	"github.com/bnema/webbridge/internal/logging"
)

// HostSession is one run of the host: its id, its logger and the store it is
// recorded in.
type HostSession struct {
	Session *entity.Session
	Logger  zerolog.Logger

	store      port.SessionStore
	logCleanup func()
}

// StartSession generates a session id, creates the session logger (stderr plus
// an optional rotated file) and records the session start when store is set.
// The returned context carries the session logger.
func StartSession(ctx context.Context, cfg *config.Config, store port.SessionStore) (*HostSession, context.Context, error) {
	session := &entity.Session{
		ID:        entity.SessionID(logging.GenerateSessionID()),
		StartedAt: time.Now().UTC(),
	}
	if err := session.Validate(); err != nil {
		return nil, ctx, err
	}

	logger, cleanup, err := logging.NewWithFile(
		logging.Config{
			Level:      logging.ParseLevel(cfg.Logging.Level),
			Format:     cfg.Logging.Format,
			TimeFormat: time.RFC3339,
		},
		logging.FileConfig{
			Enabled:       cfg.Logging.EnableFileLog,
			Dir:           cfg.Logging.LogDir,
			SessionID:     string(session.ID),
			MaxSizeMB:     cfg.Logging.MaxSizeMB,
			MaxBackups:    cfg.Logging.MaxBackups,
			MaxAgeDays:    cfg.Logging.MaxAgeDays,
			Compress:      cfg.Logging.Compress,
			WriteToStderr: true,
		},
	)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("failed to create session log file, logging to stderr only")
	}
	sessionCtx := logging.WithContext(ctx, logger)

	hs := &HostSession{
		Session:    session,
		Logger:     logger,
		store:      store,
		logCleanup: cleanup,
	}

	if store != nil {
		if err := store.Save(sessionCtx, session); err != nil {
			cleanup()
			return nil, ctx, fmt.Errorf("record session: %w", err)
		}
	}

	logger.Info().Str("session_id", string(session.ID)).Msg("session started")
	return hs, sessionCtx, nil
}

// End records the end of the session and closes the log file.
func (s *HostSession) End(ctx context.Context) error {
	if s == nil || !s.Session.IsActive() {
		return nil
	}
	s.Session.End(time.Now())

	var err error
	if s.store != nil {
		err = s.store.MarkEnded(ctx, s.Session.ID, *s.Session.EndedAt)
	}
	s.Logger.Info().
		Str("session_id", string(s.Session.ID)).
		Dur("duration", s.Session.EndedAt.Sub(s.Session.StartedAt)).
		Msg("session ended")
	if s.logCleanup != nil {
		s.logCleanup()
	}
	return err
}
