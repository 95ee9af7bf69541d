package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/interview-assistant/internal/types"
)

// SQLiteStore implements Store on a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// timeLayout has fixed width so TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// OpenSQLite opens (or creates) the database file at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	script, err := migration("sqlite")
	if err != nil {
		return err
	}
	for _, stmt := range splitStatements(script) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: init schema: %w", err)
		}
	}
	return nil
}

// Ping verifies the database is reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CheckSchema selects every session column from an empty result.
func (s *SQLiteStore) CheckSchema(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM interview_sessions LIMIT 0`)
	if err != nil {
		return fmt.Errorf("sqlite: interview_sessions schema: %w", err)
	}
	return rows.Close()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertUserByEmail finds the user by email or creates it
func (s *SQLiteStore) UpsertUserByEmail(ctx context.Context, email, username string) (*types.User, error) {
	var u types.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (id, username, email, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (email) DO UPDATE SET email = excluded.email
		 RETURNING id, username, email, created_at`,
		uuid.New().String(), username, email, formatTime(time.Now()),
	).Scan(&u.ID, &u.Username, &u.Email, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by ID
func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	var u types.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, created_at FROM users WHERE id = ?`,
		id.String(),
	).Scan(&u.ID, &u.Username, &u.Email, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession inserts a new interview session
func (s *SQLiteStore) CreateSession(ctx context.Context, session *types.InterviewSession) error {
	prepareSession(session)
	r, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interview_sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.UserID.String(), r.Mode, r.Difficulty, r.Role, r.ResumeFilename,
		string(r.TechnicalSkills), string(r.SoftSkills), string(r.Projects), r.ExperienceLevel, r.ResumeSummary,
		string(r.Questions), string(r.Answers), nullableText(r.Feedback), r.Status,
		formatTime(r.CreatedAt), nullableTime(r.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSession(row rowScanner) (*sessionRecord, error) {
	var r sessionRecord
	var createdAt string
	var completedAt, feedback sql.NullString
	err := row.Scan(&r.ID, &r.UserID, &r.Mode, &r.Difficulty, &r.Role, &r.ResumeFilename,
		&r.TechnicalSkills, &r.SoftSkills, &r.Projects, &r.ExperienceLevel, &r.ResumeSummary,
		&r.Questions, &r.Answers, &feedback, &r.Status, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if feedback.Valid {
		r.Feedback = []byte(feedback.String)
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		r.CompletedAt = &t
	}
	return &r, nil
}

// GetSession retrieves a session owned by userID
func (s *SQLiteStore) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.InterviewSession, error) {
	r, err := scanSQLiteSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM interview_sessions WHERE id = ? AND user_id = ?`,
		sessionID.String(), userID.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return r.decode()
}

// ListSessions retrieves the user's most recent sessions
func (s *SQLiteStore) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]types.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM interview_sessions
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*types.InterviewSession
	for rows.Next() {
		r, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		session, err := r.decode()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return summaries(sessions), nil
}

// SaveAnswer updates one answer slot inside a transaction. The single
// connection serializes concurrent writers.
func (s *SQLiteStore) SaveAnswer(ctx context.Context, userID, sessionID uuid.UUID, index int, answer string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var mode, status, questions, answers string
	err = tx.QueryRowContext(ctx,
		`SELECT mode, status, questions, answers FROM interview_sessions
		 WHERE id = ? AND user_id = ?`,
		sessionID.String(), userID.String(),
	).Scan(&mode, &status, &questions, &answers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	if types.SessionStatus(status) == types.StatusCompleted {
		return ErrSessionCompleted
	}

	updated, err := applyAnswer(mode, []byte(questions), []byte(answers), index, answer)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE interview_sessions SET answers = ? WHERE id = ?`,
		string(updated), sessionID.String(),
	); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answer: %w", err)
	}
	return nil
}

// CompleteSession stores feedback on an active session
func (s *SQLiteStore) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID, fb *types.Feedback) error {
	feedback, err := marshalFeedback(fb)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE interview_sessions
		 SET status = ?, feedback = ?, completed_at = ?
		 WHERE id = ? AND user_id = ? AND status = ?`,
		string(types.StatusCompleted), string(feedback), formatTime(time.Now()),
		sessionID.String(), userID.String(), string(types.StatusActive),
	)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM interview_sessions WHERE id = ? AND user_id = ?)`,
		sessionID.String(), userID.String(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return ErrSessionNotFound
	}
	return ErrSessionCompleted
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullableText(data []byte) any {
	if data == nil {
		return nil
	}
	return string(data)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
