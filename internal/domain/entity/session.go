package entity

import (
	"errors"
	"time"
)

// SessionID uniquely identifies a host run.
// It matches the log session ID format (YYYYMMDD_HHMMSS_xxxx).
type SessionID string

// ErrInvalidSession is returned when a session fails validation.
var ErrInvalidSession = errors.New("invalid session")

// Session captures metadata about a webbridge run.
type Session struct {
	ID        SessionID
	StartedAt time.Time
	EndedAt   *time.Time
}

func (s *Session) ShortID() string {
	id := string(s.ID)
	if len(id) < 4 {
		return id
	}
	return id[len(id)-4:]
}

func (s *Session) IsActive() bool {
	return s != nil && s.EndedAt == nil
}

func (s *Session) End(endedAt time.Time) {
	endedAt = endedAt.UTC()
	s.EndedAt = &endedAt
}

func (s *Session) Validate() error {
	if s == nil || s.ID == "" || s.StartedAt.IsZero() {
		return ErrInvalidSession
	}
	return nil
}

// SessionSummary is a session with its journaled call counts.
type SessionSummary struct {
	Session  Session
	Calls    int
	Failures int
}
