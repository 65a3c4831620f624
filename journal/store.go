// Package journal records treatment sessions in SQLite
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/lixenwraith/field-medic/journal/migrations"
)

// ErrAlreadyExists is returned when a session id is reused
var ErrAlreadyExists = errors.New("session already recorded")

// observerBuffer bounds records queued between the loop and the writer
const observerBuffer = 256

// Transition is one recorded state change
type Transition struct {
	Seq       int64
	SessionID string
	InjuryID  string
	From      string
	To        string
	Trigger   string
	At        time.Time
}

// Healed is one recorded injury completion
type Healed struct {
	SessionID string
	InjuryID  string
	At        time.Time
}

// Session is one recorded treatment session
type Session struct {
	ID          string
	Scenario    string
	StartedAt   time.Time
	AllHealedAt time.Time // Zero until every injury healed
	FinishedAt  time.Time // Zero while running
}

// Store persists treatment journals in SQLite
type Store struct {
	sqlDB *sql.DB
	log   *slog.Logger
	now   func() time.Time

	records chan record
	wg      sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	dropped int
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens or creates the journal at path and applies embedded migrations
func Open(path string, log *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if log == nil {
		log = slog.Default()
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{
		sqlDB:   sqlDB,
		log:     log.With("component", "journal"),
		now:     time.Now,
		records: make(chan record, observerBuffer),
	}
	s.wg.Add(1)
	go s.writer()
	return s, nil
}

// Close drains queued records and closes the database
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.records)
	s.mu.Unlock()

	s.wg.Wait()
	if s.dropped > 0 {
		s.log.Warn("journal records dropped", "count", s.dropped)
	}
	return s.sqlDB.Close()
}

// BeginSession records a new session
func (s *Store) BeginSession(ctx context.Context, id, scenario string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("session id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, scenario, started_at) VALUES (?, ?, ?)`,
		id, scenario, toMillis(s.now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// FinishSession stamps the session end
func (s *Store) FinishSession(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE sessions SET finished_at = ? WHERE id = ? AND finished_at IS NULL`,
		toMillis(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish session %q: not found or already finished", id)
	}
	return nil
}

// Session returns one recorded session
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	var (
		out                 Session
		started             int64
		allHealed, finished sql.NullInt64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, scenario, started_at, all_healed_at, finished_at FROM sessions WHERE id = ?`, id,
	).Scan(&out.ID, &out.Scenario, &started, &allHealed, &finished)
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	out.StartedAt = fromMillis(started)
	if allHealed.Valid {
		out.AllHealedAt = fromMillis(allHealed.Int64)
	}
	if finished.Valid {
		out.FinishedAt = fromMillis(finished.Int64)
	}
	return out, nil
}

// Transitions returns a session's state changes in recording order
func (s *Store) Transitions(ctx context.Context, sessionID string) ([]Transition, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, session_id, injury_id, from_state, to_state, cause, recorded_at
		   FROM transitions WHERE session_id = ? ORDER BY seq`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		var at int64
		if err := rows.Scan(&t.Seq, &t.SessionID, &t.InjuryID, &t.From, &t.To, &t.Trigger, &at); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.At = fromMillis(at)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	return out, nil
}

// Healed returns a session's completed injuries in completion order
func (s *Store) Healed(ctx context.Context, sessionID string) ([]Healed, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT session_id, injury_id, recorded_at FROM healed WHERE session_id = ? ORDER BY recorded_at, rowid`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list healed: %w", err)
	}
	defer rows.Close()

	var out []Healed
	for rows.Next() {
		var h Healed
		var at int64
		if err := rows.Scan(&h.SessionID, &h.InjuryID, &at); err != nil {
			return nil, fmt.Errorf("scan healed: %w", err)
		}
		h.At = fromMillis(at)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list healed: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
