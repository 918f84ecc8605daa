// Package journal persists adapter lifecycle entries to SQLite.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/xaionaro-go/xsync"

	_ "modernc.org/sqlite"
)

// Schema of the adapter_journal table.
const Schema = `
CREATE TABLE IF NOT EXISTS adapter_journal (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	window_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	state TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_adapter_journal_window ON adapter_journal(window_id, id);
`

const flushBatchSize = 64

// Options tune the asynchronous writer.
type Options struct {
	// BufferSize is the number of entries queued before Record drops.
	BufferSize int
	// FlushInterval bounds how long an entry waits before it is written.
	FlushInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.BufferSize <= 0 {
		o.BufferSize = 1024
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = time.Second
	}
	return o
}

// Record is one persisted journal row.
type Record struct {
	ID     int64             `yaml:"id"               json:"id"`
	Window adapter.WindowID  `yaml:"window"           json:"window"`
	Kind   adapter.EntryKind `yaml:"kind"             json:"kind"`
	State  adapter.State     `yaml:"state"            json:"state"`
	Detail string            `yaml:"detail,omitempty" json:"detail,omitempty"`
	Time   time.Time         `yaml:"time"             json:"time"`
}

// Store writes journal entries asynchronously. Record never blocks the
// caller; entries are dropped when the buffer is full.
type Store struct {
	ctx    context.Context
	db     *sql.DB
	ownsDB bool
	opts   Options

	ch      chan adapter.Entry
	syncCh  chan chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64

	locker xsync.Mutex
	closed bool
}

var _ adapter.Observer = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open journal '%s': %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared between the
	// writer and queries.
	db.SetMaxOpenConns(1)
	s, err := New(ctx, db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// New creates the schema in db and starts the writer.
func New(ctx context.Context, db *sql.DB, opts Options) (*Store, error) {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return nil, fmt.Errorf("unable to initialize the journal schema: %w", err)
	}
	opts = opts.withDefaults()
	s := &Store{
		ctx:    ctx,
		db:     db,
		opts:   opts,
		ch:     make(chan adapter.Entry, opts.BufferSize),
		syncCh: make(chan chan struct{}),
		done:   make(chan struct{}),
	}
	go s.flushLoop()
	return s, nil
}

// Observe implements adapter.Observer.
func (s *Store) Observe(ctx context.Context, e adapter.Entry) {
	s.Record(ctx, e)
}

// Record queues e for persistence.
func (s *Store) Record(ctx context.Context, e adapter.Entry) {
	s.locker.Do(ctx, func() {
		if s.closed {
			return
		}
		select {
		case s.ch <- e:
		default:
			if s.dropped.Add(1) == 1 {
				logger.Warnf(ctx, "journal buffer full, dropping entries")
			}
		}
	})
}

// Dropped returns how many entries were discarded because the buffer was
// full.
func (s *Store) Dropped() uint64 { return s.dropped.Load() }

// Sync waits until every entry recorded so far is written.
func (s *Store) Sync(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case s.syncCh <- reply:
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query returns up to limit records, newest first. A zero window selects
// every window; a non-positive limit means no limit.
func (s *Store) Query(ctx context.Context, window adapter.WindowID, limit int) ([]Record, error) {
	if err := s.Sync(ctx); err != nil {
		return nil, err
	}
	q := `SELECT id, window_id, kind, state, detail, timestamp FROM adapter_journal`
	var args []any
	if window != 0 {
		q += ` WHERE window_id = ?`
		args = append(args, uint64(window))
	}
	q += ` ORDER BY id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to query the journal: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r      Record
			window uint64
			kind   string
			state  string
			ts     int64
		)
		if err := rows.Scan(&r.ID, &window, &kind, &state, &r.Detail, &ts); err != nil {
			return nil, fmt.Errorf("unable to scan a journal row: %w", err)
		}
		r.Window = adapter.WindowID(window)
		r.Kind = adapter.EntryKind(kind)
		if r.State, err = adapter.ParseState(state); err != nil {
			return nil, fmt.Errorf("journal row %d: %w", r.ID, err)
		}
		r.Time = time.Unix(0, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close drains the buffer, stops the writer and closes the database if the
// store opened it.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.locker.Do(s.ctx, func() {
			s.closed = true
			close(s.ch)
		})
		<-s.done
		if s.ownsDB {
			err = s.db.Close()
		}
	})
	return err
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]adapter.Entry, 0, flushBatchSize)
	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= flushBatchSize {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case reply := <-s.syncCh:
			batch = s.drain(batch)
			s.flushBatch(batch)
			batch = batch[:0]
			close(reply)
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

// drain moves every queued entry into batch without blocking.
func (s *Store) drain(batch []adapter.Entry) []adapter.Entry {
	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				return batch
			}
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

func (s *Store) flushBatch(batch []adapter.Entry) {
	if len(batch) == 0 {
		return
	}
	ctx := s.ctx

	tx, err := s.db.Begin()
	if err != nil {
		logger.Errorf(ctx, "journal: begin tx: %v", err)
		return
	}
	stmt, err := tx.Prepare(`INSERT INTO adapter_journal (window_id, kind, state, detail, timestamp)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		logger.Errorf(ctx, "journal: prepare: %v", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(uint64(e.Window), string(e.Kind), string(e.State), e.Detail, e.Time.UnixNano()); err != nil {
			logger.Errorf(ctx, "journal: insert: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		logger.Errorf(ctx, "journal: commit: %v", err)
	}
}
