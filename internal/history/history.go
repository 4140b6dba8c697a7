// Package history records every inbound bridge call in the dispatch_log
// table so recent activity can be listed after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded call.
type Entry struct {
	ID        string        `json:"id"`
	Entry     string        `json:"entry"`
	Kind      string        `json:"kind,omitempty"`
	Target    string        `json:"target,omitempty"`
	OK        bool          `json:"ok"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	RequestID string        `json:"request_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// DurationMS is Duration in whole milliseconds.
func (e Entry) DurationMS() int64 {
	return e.Duration.Milliseconds()
}

type entryAlias Entry

type entryJSON struct {
	entryAlias
	DurationMS int64 `json:"duration_ms"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{entryAlias: entryAlias(e), DurationMS: e.DurationMS()})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var w entryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Entry(w.entryAlias)
	e.Duration = time.Duration(w.DurationMS) * time.Millisecond
	return nil
}

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 50

// Store reads and writes dispatch_log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps a database opened with storage.OpenSQLite.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record inserts e, assigning ID and CreatedAt when unset, and returns the
// stored entry.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.Entry == "" {
		return Entry{}, fmt.Errorf("entry is empty")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	ok := 0
	if e.OK {
		ok = 1
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO dispatch_log(id, entry, kind, target, ok, message, duration_ms, request_id, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
`, e.ID, e.Entry, nullable(e.Kind), nullable(e.Target), ok, e.Message, e.DurationMS(), nullable(e.RequestID),
		e.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Entry{}, fmt.Errorf("record dispatch: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, entry, kind, target, ok, message, duration_ms, request_id, created_at
FROM dispatch_log
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			kind       sql.NullString
			target     sql.NullString
			requestID  sql.NullString
			ok         int
			durationMS int64
			createdAtS string
		)
		if err := rows.Scan(&e.ID, &e.Entry, &kind, &target, &ok, &e.Message, &durationMS, &requestID, &createdAtS); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		e.Kind = kind.String
		e.Target = target.String
		e.RequestID = requestID.String
		e.OK = ok != 0
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAtS); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	return out, nil
}

// Prune deletes entries older than retention and reports how many went.
// A non-positive retention keeps everything.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-retention).UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM dispatch_log WHERE created_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune dispatch log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune dispatch log: %w", err)
	}
	return n, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
