// Package journal is the SQLite audit log of applied action results.
//
// Every result is stored whole, keyed by its actionId. Recording the same
// actionId twice fails with ErrDuplicateAction, which is what gives the
// turn pipeline at-most-once application.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nathoo/rulecore/engine/action"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationTable = "schema_migrations"

var (
	// ErrDuplicateAction is returned when an actionId is already journaled.
	ErrDuplicateAction = errors.New("action already journaled")
	// ErrNotFound is returned by Get for an unknown actionId.
	ErrNotFound = errors.New("action not journaled")
)

// Entry is one journaled result.
type Entry struct {
	Seq        int64
	SessionID  string
	ActionID   string
	Kind       action.Kind
	ActorID    string
	Outcome    action.Outcome
	Result     action.Result
	RecordedAt time.Time
}

// Journal is a SQLite-backed result log.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the journal at path, creating it if needed, and applies
// migrations.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores res. It returns an error wrapping ErrDuplicateAction when
// res.ActionID is already present.
func (j *Journal) Record(ctx context.Context, res action.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(res.ActionID) == "" {
		return fmt.Errorf("action id is required")
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", res.ActionID, err)
	}

	var kind, actor string
	if a := res.Source.Action; a != nil {
		kind = string(a.Kind())
		actor = a.Meta().ActorID
	}
	_, err = j.db.ExecContext(ctx, `
INSERT INTO action_results (
	session_id,
	action_id,
	kind,
	actor_id,
	outcome,
	result_json,
	recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		res.Source.SessionID,
		res.ActionID,
		kind,
		actor,
		string(res.Outcome),
		string(payload),
		j.now().UTC().UnixMilli(),
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateAction, res.ActionID)
		}
		return fmt.Errorf("record result %s: %w", res.ActionID, err)
	}
	return nil
}

// Get returns the entry for actionID.
func (j *Journal) Get(ctx context.Context, actionID string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	row := j.db.QueryRowContext(ctx, `
SELECT `+entryColumns+`
FROM action_results
WHERE action_id = ?
`, actionID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, actionID)
	}
	return e, err
}

const entryColumns = "seq, session_id, action_id, kind, actor_id, outcome, result_json, recorded_at"

// List returns entries of every session in recording order. A limit of
// zero or less returns every entry.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	return j.list(ctx, true, "", limit)
}

// ListSession returns the entries of one session in recording order. The
// empty ID selects entries recorded without a session.
func (j *Journal) ListSession(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	return j.list(ctx, false, sessionID, limit)
}

func (j *Journal) list(ctx context.Context, all bool, sessionID string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT `+entryColumns+`
FROM action_results
WHERE ? OR session_id = ?
ORDER BY seq ASC
LIMIT ?
`, all, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return entries, nil
}

// Session summarizes the entries recorded under one session ID.
type Session struct {
	ID      string
	Entries int
	First   time.Time
	Last    time.Time
}

// Sessions lists every session in the order it was first recorded.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT session_id, COUNT(*), MIN(recorded_at), MAX(recorded_at)
FROM action_results
GROUP BY session_id
ORDER BY MIN(seq) ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			s           Session
			first, last int64
		)
		if err := rows.Scan(&s.ID, &s.Entries, &first, &last); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.First = time.UnixMilli(first).UTC()
		s.Last = time.UnixMilli(last).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e          Entry
		kind       string
		outcome    string
		payload    string
		recordedAt int64
	)
	if err := s.Scan(&e.Seq, &e.SessionID, &e.ActionID, &kind, &e.ActorID, &outcome, &payload, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan result: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &e.Result); err != nil {
		return Entry{}, fmt.Errorf("decode result %s: %w", e.ActionID, err)
	}
	e.Kind = action.Kind(kind)
	e.Outcome = action.Outcome(outcome)
	e.RecordedAt = time.UnixMilli(recordedAt).UTC()
	return e, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// migrate applies each embedded migration at most once, in file name order.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	files, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		var found int
		err := db.QueryRow("SELECT 1 FROM "+migrationTable+" WHERE name = ?", file).Scan(&found)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(upSection(string(content))); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec("INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)", file, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// upSection returns the SQL between the Up and Down markers.
func upSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	if i := strings.Index(content, up); i >= 0 {
		content = content[i+len(up):]
	}
	if i := strings.Index(content, down); i >= 0 {
		content = content[:i]
	}
	return content
}
