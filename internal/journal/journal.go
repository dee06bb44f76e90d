package journal

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/wagiedev/sidecar-rpc-go/internal/protocol"
	"github.com/wagiedev/sidecar-rpc-go/internal/wire"
)

// Traffic directions.
const (
	DirectionSend = "send"
	DirectionRecv = "recv"
)

// Traffic kinds.
const (
	KindRequest  = "request"
	KindResponse = "response"
	KindEvent    = "event"
)

// queueSize is the capacity of the async write queue. Records beyond it
// are dropped rather than stalling the protocol path.
const queueSize = 256

// Entry is one journaled wire document.
type Entry struct {
	ID        int64
	Time      time.Time
	Direction string
	Kind      string
	CallID    *uint64 // correlation id, nil for events and id-less responses
	Label     string  // method for requests, event tag for events
	Payload   []byte
}

type record struct {
	at        int64
	direction string
	kind      string
	callID    sql.NullInt64
	label     string
	payload   []byte
}

// Journal persists wire traffic to a local SQLite database.
//
// Writes go through a single-writer queue so recording never blocks the
// read loop or a caller's send path. When the queue is full, records are
// dropped and counted; the journal is a diagnostic aid, not a durability
// guarantee.
type Journal struct {
	log     *slog.Logger
	db      *sql.DB
	path    string
	records chan record
	done    chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// Compile-time verification that Journal observes router traffic.
var _ protocol.Recorder = (*Journal)(nil)

// Open creates or opens a journal database at path and starts the writer.
func Open(ctx context.Context, log *slog.Logger, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	j := &Journal{
		log:     log.With("component", "journal"),
		db:      db,
		path:    path,
		records: make(chan record, queueSize),
		done:    make(chan struct{}),
	}

	if err := j.init(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	go j.writeLoop()

	return j, nil
}

// Path returns the underlying SQLite file path.
func (j *Journal) Path() string {
	return j.path
}

// init applies pragmas and schema.
func (j *Journal) init(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS traffic (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at INTEGER NOT NULL,
			direction TEXT NOT NULL CHECK (direction IN ('send','recv')),
			kind TEXT NOT NULL CHECK (kind IN ('request','response','event')),
			call_id INTEGER,
			label TEXT NOT NULL DEFAULT '',
			payload BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_traffic_at ON traffic(at);`,
		`CREATE INDEX IF NOT EXISTS idx_traffic_call ON traffic(call_id);`,
	}
	for _, stmt := range ddl {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}

// writeLoop drains the queue into the database until the queue closes.
func (j *Journal) writeLoop() {
	defer close(j.done)

	for rec := range j.records {
		_, err := j.db.ExecContext(context.Background(),
			`INSERT INTO traffic(at, direction, kind, call_id, label, payload) VALUES(?,?,?,?,?,?)`,
			rec.at, rec.direction, rec.kind, rec.callID, rec.label, rec.payload)
		if err != nil {
			j.log.Warn("Journal write failed", "error", err)
		}
	}
}

// enqueue hands a record to the writer without blocking. Records offered
// after Close, or while the queue is full, are dropped.
func (j *Journal) enqueue(rec record) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return
	}

	select {
	case j.records <- rec:
	default:
		j.dropped.Add(1)
		j.log.Debug("Journal queue full, dropping record", "kind", rec.kind)
	}
}

// RecordSend journals an outbound request.
func (j *Journal) RecordSend(req *wire.Request, raw []byte) {
	j.enqueue(record{
		at:        time.Now().UnixMilli(),
		direction: DirectionSend,
		kind:      KindRequest,
		callID:    sql.NullInt64{Int64: int64(req.ID), Valid: true},
		label:     req.Method,
		payload:   bytes.TrimRight(raw, "\n"),
	})
}

// RecordResponse journals an inbound response document.
func (j *Journal) RecordResponse(resp *wire.Response, raw []byte) {
	callID := sql.NullInt64{}
	if resp.ID != nil {
		callID = sql.NullInt64{Int64: int64(*resp.ID), Valid: true}
	}

	j.enqueue(record{
		at:        time.Now().UnixMilli(),
		direction: DirectionRecv,
		kind:      KindResponse,
		callID:    callID,
		payload:   raw,
	})
}

// RecordEvent journals an inbound event document.
func (j *Journal) RecordEvent(evt *wire.Event, raw []byte) {
	j.enqueue(record{
		at:        time.Now().UnixMilli(),
		direction: DirectionRecv,
		kind:      KindEvent,
		label:     evt.Tag,
		payload:   raw,
	})
}

// Dropped reports how many records were discarded because the queue was
// full.
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, at, direction, kind, call_id, label, payload
		 FROM traffic ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			e      Entry
			at     int64
			callID sql.NullInt64
		)

		if err := rows.Scan(&e.ID, &at, &e.Direction, &e.Kind, &callID, &e.Label, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}

		e.Time = time.UnixMilli(at)

		if callID.Valid {
			id := uint64(callID.Int64)
			e.CallID = &id
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal rows: %w", err)
	}

	return entries, nil
}

// Close drains pending records and closes the database. Records offered
// after Close are silently dropped. Safe to call once.
func (j *Journal) Close() error {
	j.mu.Lock()

	if j.closed {
		j.mu.Unlock()

		return nil
	}

	j.closed = true
	j.mu.Unlock()

	close(j.records)
	<-j.done

	if n := j.dropped.Load(); n > 0 {
		j.log.Warn("Journal dropped records", "count", n)
	}

	return j.db.Close()
}
