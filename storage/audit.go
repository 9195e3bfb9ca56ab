package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"codingagent/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// AuditFile is the database file name inside the data directory.
const AuditFile = "audit.db"

// AuditLog records every tool call of a session in SQLite. It implements
// model.Recorder.
type AuditLog struct {
	db        *sql.DB
	sessionID string

	closeOnce sync.Once
	closeErr  error
}

// Session is one agent run.
type Session struct {
	ID        string
	Model     string
	StartedAt time.Time
	EndedAt   time.Time
	ToolCalls int
}

// NewAuditLog opens (or creates) the audit database in dataDir and starts a
// new session for modelName.
func NewAuditLog(dataDir, modelName string) (*AuditLog, error) {
	dbPath := filepath.Join(dataDir, AuditFile)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a single connection serializes writers from parallel tool calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	audit := &AuditLog{db: db, sessionID: uuid.New().String()}

	if err := audit.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	_, err = db.Exec(`INSERT INTO sessions (id, model, started_at) VALUES (?, ?, ?)`,
		audit.sessionID, modelName, time.Now().UnixNano())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	return audit, nil
}

func (a *AuditLog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER
	);
	CREATE TABLE IF NOT EXISTS tool_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		call_id TEXT NOT NULL,
		name TEXT NOT NULL,
		arguments TEXT NOT NULL,
		result TEXT NOT NULL,
		is_error INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_session ON tool_calls(session_id);
	`

	if _, err := a.db.Exec(schema); err != nil {
		return err
	}

	if err := a.migrateSchema(); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	return nil
}

// migrateSchema adds the round column to databases created before rounds
// were recorded.
func (a *AuditLog) migrateSchema() error {
	hasRound, err := a.columnExists("tool_calls", "round")
	if err != nil {
		return fmt.Errorf("failed to check for round column: %w", err)
	}

	if !hasRound {
		if _, err := a.db.Exec(`ALTER TABLE tool_calls ADD COLUMN round INTEGER DEFAULT 0`); err != nil {
			return fmt.Errorf("failed to add round column: %w", err)
		}
	}

	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info
func (a *AuditLog) columnExists(tableName, columnName string) (bool, error) {
	rows, err := a.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var defaultValue any

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}

	return false, rows.Err()
}

// SessionID returns the id of the session this log writes to.
func (a *AuditLog) SessionID() string {
	return a.sessionID
}

// RecordToolCall implements model.Recorder.
func (a *AuditLog) RecordToolCall(ctx context.Context, record model.ToolCallRecord) error {
	args, err := json.Marshal(record.Arguments)
	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}

	isError := 0
	if record.IsError {
		isError = 1
	}

	_, err = a.db.ExecContext(ctx, `
	INSERT INTO tool_calls (session_id, round, call_id, name, arguments, result, is_error, started_at, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.sessionID,
		record.Round,
		record.CallID,
		record.Name,
		string(args),
		record.Result,
		isError,
		record.StartedAt.UnixNano(),
		record.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record tool call: %w", err)
	}
	return nil
}

// ToolCalls returns the recorded calls of a session in insertion order.
func (a *AuditLog) ToolCalls(ctx context.Context, sessionID string) ([]model.ToolCallRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
	SELECT round, call_id, name, arguments, result, is_error, started_at, duration_ms
	FROM tool_calls WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool calls: %w", err)
	}
	defer rows.Close()

	var records []model.ToolCallRecord
	for rows.Next() {
		var rec model.ToolCallRecord
		var args string
		var isError int
		var startedAt, durationMs int64

		if err := rows.Scan(&rec.Round, &rec.CallID, &rec.Name, &args, &rec.Result, &isError, &startedAt, &durationMs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(args), &rec.Arguments); err != nil {
			return nil, fmt.Errorf("failed to decode arguments of %s: %w", rec.CallID, err)
		}
		rec.IsError = isError != 0
		rec.StartedAt = time.Unix(0, startedAt)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Sessions lists recorded sessions, newest first.
func (a *AuditLog) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := a.db.QueryContext(ctx, `
	SELECT s.id, s.model, s.started_at, COALESCE(s.ended_at, 0), COUNT(t.id)
	FROM sessions s LEFT JOIN tool_calls t ON t.session_id = s.id
	GROUP BY s.id ORDER BY s.started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var startedAt, endedAt int64
		if err := rows.Scan(&s.ID, &s.Model, &startedAt, &endedAt, &s.ToolCalls); err != nil {
			return nil, err
		}
		s.StartedAt = time.Unix(0, startedAt)
		if endedAt != 0 {
			s.EndedAt = time.Unix(0, endedAt)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// Close marks the session ended and closes the database. It is safe to call
// more than once.
func (a *AuditLog) Close() error {
	a.closeOnce.Do(func() {
		_, err := a.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, time.Now().UnixNano(), a.sessionID)
		if cerr := a.db.Close(); err == nil {
			err = cerr
		}
		a.closeErr = err
	})
	return a.closeErr
}
