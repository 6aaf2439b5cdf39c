package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serialises writes to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		page TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);

	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		issue TEXT NOT NULL,
		turns INTEGER NOT NULL,
		resolved_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(user_id, resolved_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AppendMessages writes committed messages in a single transaction.
func (s *SQLiteStore) AppendMessages(ctx context.Context, msgs []domain.ArchivedMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			slog.Warn("failed to rollback append", "error", rbErr)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (session_id, user_id, page, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			slog.Warn("failed to close append statement", "error", closeErr)
		}
	}()

	for _, m := range msgs {
		if _, err := stmt.ExecContext(ctx,
			m.SessionID, m.UserID, string(m.Page), string(m.Role), m.Content, m.CreatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("append message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// RecordAttempt stores a resolved simulator attempt.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, attempt *domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO attempts (id, user_id, session_id, issue, turns, resolved_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		turns = excluded.turns,
		resolved_at = excluded.resolved_at`

	_, err := s.db.ExecContext(ctx, query,
		attempt.ID, attempt.UserID, attempt.SessionID,
		attempt.Issue, attempt.Turns, attempt.ResolvedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the latest attempts for a user.
func (s *SQLiteStore) ListAttempts(ctx context.Context, userID string, limit int) ([]*domain.Attempt, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, session_id, issue, turns, resolved_at
		FROM attempts WHERE user_id = ?
		ORDER BY resolved_at DESC, rowid DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close attempts rows", "error", closeErr)
		}
	}()

	attempts := []*domain.Attempt{}
	for rows.Next() {
		var a domain.Attempt
		var resolvedAt int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.SessionID, &a.Issue, &a.Turns, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scan attempt row: %w", err)
		}
		a.ResolvedAt = time.Unix(resolvedAt, 0)
		attempts = append(attempts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}

	return attempts, nil
}

// PruneBefore deletes messages and attempts older than cutoff.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgRes, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, 0, fmt.Errorf("prune messages: %w", err)
	}
	msgRows, err := msgRes.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("pruned messages rows affected: %w", err)
	}

	attRes, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE resolved_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, 0, fmt.Errorf("prune attempts: %w", err)
	}
	attRows, err := attRes.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("pruned attempts rows affected: %w", err)
	}

	return msgRows, attRows, nil
}

// CountMessages returns how many messages are archived for a session.
func (s *SQLiteStore) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
