package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/logging"
)

const (
	defaultJournalBuffer = 256
	defaultRecentLimit   = 50
	journalBatchSize     = 64
	pruneEvery           = 500
)

const insertCallSQL = `INSERT INTO calls
	(session_id, view_id, callback_id, function_name, mode, status, error, duration_us, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectCallsSQL = `SELECT id, session_id, view_id, callback_id, function_name, mode, status, error, duration_us, created_at
	FROM calls`

var (
	_ port.CallJournal       = (*Journal)(nil)
	_ port.CallJournalReader = (*Journal)(nil)
	_ DBProvider             = (*LazyDB)(nil)
)

// DBProvider hands out the shared connection. *LazyDB implements it.
type DBProvider interface {
	DB(ctx context.Context) (*sql.DB, error)
}

// JournalOptions tunes the buffered writer.
type JournalOptions struct {
	// Buffer is the number of records queued before Record starts dropping.
	Buffer int
	// MaxEntries bounds the table; 0 keeps everything.
	MaxEntries int
}

// Journal records invocations without blocking the caller. Records are queued
// on a channel and written in batches by a single goroutine; when the queue
// is full the record is dropped and counted.
type Journal struct {
	provider   DBProvider
	baseCtx    context.Context
	log        zerolog.Logger
	maxEntries int

	mu      sync.RWMutex
	closed  bool
	records chan entity.CallRecord
	done    chan struct{}

	dropped    atomic.Uint64
	sincePrune int
}

// NewJournal starts the journal writer.
func NewJournal(ctx context.Context, provider DBProvider, opts JournalOptions) *Journal {
	if opts.Buffer <= 0 {
		opts.Buffer = defaultJournalBuffer
	}
	j := &Journal{
		provider:   provider,
		baseCtx:    logging.WithComponent(ctx, "journal"),
		log:        logging.Component(ctx, "journal"),
		maxEntries: opts.MaxEntries,
		records:    make(chan entity.CallRecord, opts.Buffer),
		done:       make(chan struct{}),
	}
	go j.run()
	return j
}

// Record queues rec for writing.
func (j *Journal) Record(_ context.Context, rec entity.CallRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}

	select {
	case j.records <- rec:
	default:
		if n := j.dropped.Add(1); n == 1 || n%100 == 0 {
			j.log.Warn().Uint64("dropped", n).Msg("journal queue full, dropping records")
		}
	}
}

// Dropped returns how many records were discarded because the queue was full.
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

// Close flushes queued records and stops the writer. It does not close the
// database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	close(j.records)
	j.mu.Unlock()

	<-j.done
	return nil
}

func (j *Journal) run() {
	defer close(j.done)

	batch := make([]entity.CallRecord, 0, journalBatchSize)
	for rec := range j.records {
		batch = append(batch[:0], rec)
	fill:
		for len(batch) < journalBatchSize {
			select {
			case next, ok := <-j.records:
				if !ok {
					break fill
				}
				batch = append(batch, next)
			default:
				break fill
			}
		}
		j.flush(batch)
	}
}

func (j *Journal) flush(batch []entity.CallRecord) {
	if err := j.insert(j.baseCtx, batch); err != nil {
		j.log.Warn().Err(err).Int("records", len(batch)).Msg("failed to write call records")
		return
	}
	j.log.Debug().Int("records", len(batch)).Msg("call records written")

	j.sincePrune += len(batch)
	if j.maxEntries > 0 && j.sincePrune >= pruneEvery {
		j.sincePrune = 0
		if _, err := j.Prune(j.baseCtx, j.maxEntries); err != nil {
			j.log.Warn().Err(err).Msg("failed to prune journal")
		}
	}
}

func (j *Journal) insert(ctx context.Context, batch []entity.CallRecord) (err error) {
	db, err := j.provider.DB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertCallSQL)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range batch {
		_, err = stmt.ExecContext(ctx,
			string(rec.SessionID),
			int64(rec.ViewID),
			int64(rec.CallbackID),
			rec.Function,
			string(rec.Mode),
			string(rec.Status),
			rec.Error,
			rec.Duration.Microseconds(),
			rec.CreatedAt.UTC().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", rec.Function, err)
		}
	}
	return tx.Commit()
}

// Recent returns the newest records first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]entity.CallRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return j.query(ctx, selectCallsSQL+" ORDER BY id DESC LIMIT ?", limit)
}

// RecentForSession returns the newest records of one session first.
func (j *Journal) RecentForSession(ctx context.Context, id entity.SessionID, limit int) ([]entity.CallRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return j.query(ctx, selectCallsSQL+" WHERE session_id = ? ORDER BY id DESC LIMIT ?", string(id), limit)
}

// Prune deletes all but the newest keep records.
func (j *Journal) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	db, err := j.provider.DB(ctx)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`DELETE FROM calls WHERE id NOT IN (SELECT id FROM calls ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune calls: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logging.FromContext(ctx).Debug().Int64("deleted", deleted).Int("keep", keep).Msg("pruned call journal")
	}
	return deleted, nil
}

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]entity.CallRecord, error) {
	db, err := j.provider.DB(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	records := make([]entity.CallRecord, 0)
	for rows.Next() {
		var (
			rec        entity.CallRecord
			sessionID  string
			viewID     int64
			callbackID int64
			mode       string
			status     string
			durationUS int64
			createdAt  int64
		)
		if err := rows.Scan(&rec.ID, &sessionID, &viewID, &callbackID, &rec.Function,
			&mode, &status, &rec.Error, &durationUS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		rec.SessionID = entity.SessionID(sessionID)
		rec.ViewID = uint64(viewID)
		rec.CallbackID = entity.CallbackID(callbackID)
		rec.Mode = entity.InvocationMode(mode)
		rec.Status = entity.InvocationStatus(status)
		rec.Duration = time.Duration(durationUS) * time.Microsecond
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
