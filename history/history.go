// Package history keeps a sqlite log of tool calls. Only call metadata is
// stored; responses are never cached.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrCallNotFound is returned when a call id is not in the store.
var ErrCallNotFound = errors.New("call not found")

// Store manages the call log using SQLite.
type Store struct {
	db *sql.DB
}

// Call is one tool invocation.
type Call struct {
	CallID    uuid.UUID `json:"call_id"`
	Tool      string    `json:"tool"`
	Arguments string    `json:"arguments"`      // raw JSON as received
	Kind      string    `json:"kind,omitempty"` // failure kind, empty on success
	Message   string    `json:"message,omitempty"`
	Attempts  int       `json:"attempts"`
	Duration  int64     `json:"duration_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Succeeded reports whether the call returned a result.
func (c Call) Succeeded() bool {
	return c.Kind == ""
}

// Filter represents filtering options for listing calls.
type Filter struct {
	Tool   string // Filter by tool name
	Failed *bool  // Filter by outcome
	Limit  int
	Offset int
}

// NewStore creates a new store with the given database path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the calls table if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calls (
		call_id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		arguments TEXT NOT NULL,
		kind TEXT,
		message TEXT,
		attempts INTEGER NOT NULL DEFAULT 1,
		duration_ms INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_calls_created_at ON calls (created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a call. A zero CallID or CreatedAt is filled in.
func (s *Store) Record(call *Call) error {
	if call.CallID == uuid.Nil {
		call.CallID = uuid.New()
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO calls (call_id, tool, arguments, kind, message, attempts, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		call.CallID.String(),
		call.Tool,
		call.Arguments,
		nullable(call.Kind),
		nullable(call.Message),
		call.Attempts,
		call.Duration,
		formatTime(call.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}

	return nil
}

// GetCall retrieves a call by id.
func (s *Store) GetCall(callID uuid.UUID) (*Call, error) {
	query := `
		SELECT call_id, tool, arguments, kind, message, attempts, duration_ms, created_at
		FROM calls
		WHERE call_id = ?
	`

	call, err := scanCall(s.db.QueryRow(query, callID.String()))
	if err == sql.ErrNoRows {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query call: %w", err)
	}

	return call, nil
}

// ListCalls returns calls matching filter, newest first.
func (s *Store) ListCalls(filter Filter) ([]Call, error) {
	query := `
		SELECT call_id, tool, arguments, kind, message, attempts, duration_ms, created_at
		FROM calls
	`

	var whereClauses []string
	var args []any

	if filter.Tool != "" {
		whereClauses = append(whereClauses, "tool = ?")
		args = append(args, filter.Tool)
	}

	if filter.Failed != nil {
		if *filter.Failed {
			whereClauses = append(whereClauses, "kind IS NOT NULL")
		} else {
			whereClauses = append(whereClauses, "kind IS NULL")
		}
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	calls := []Call{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, *call)
	}

	return calls, rows.Err()
}

// Prune deletes calls recorded before cutoff and returns how many were
// removed.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM calls WHERE created_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune calls: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(row scanner) (*Call, error) {
	var callIDStr, tool, arguments, createdAtStr string
	var kind, message sql.NullString
	var attempts int
	var duration int64

	err := row.Scan(&callIDStr, &tool, &arguments, &kind, &message, &attempts, &duration, &createdAtStr)
	if err != nil {
		return nil, err
	}

	callID, err := uuid.Parse(callIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid call_id: %w", err)
	}

	return &Call{
		CallID:    callID,
		Tool:      tool,
		Arguments: arguments,
		Kind:      kind.String,
		Message:   message.String,
		Attempts:  attempts,
		Duration:  duration,
		CreatedAt: parseTime(createdAtStr),
	}, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// formatTime stores times in UTC so that string order matches time order.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(0).Format("2006-01-02T15:04:05.000000000Z07:00")
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
