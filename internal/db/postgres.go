package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/interview-assistant/internal/types"
)

// PostgresStore implements Store on a pgx connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

const sessionColumns = `id, user_id, mode, difficulty, role, resume_filename,
	technical_skills, soft_skills, projects, experience_level, resume_summary,
	questions, answers, feedback, status, created_at, completed_at`

// OpenPostgres establishes a connection pool and applies the schema
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	script, err := migration("postgres")
	if err != nil {
		return err
	}
	for _, stmt := range splitStatements(script) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

// Ping verifies the pool can reach the server
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CheckSchema selects every session column from an empty result.
func (s *PostgresStore) CheckSchema(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT `+sessionColumns+` FROM interview_sessions LIMIT 0`)
	if err != nil {
		return fmt.Errorf("interview_sessions schema: %w", err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("interview_sessions schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// UpsertUserByEmail finds the user by email or creates it
func (s *PostgresStore) UpsertUserByEmail(ctx context.Context, email, username string) (*types.User, error) {
	var u types.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, username, email, created_at`,
		uuid.New(), username, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by ID
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	var u types.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateSession inserts a new interview session
func (s *PostgresStore) CreateSession(ctx context.Context, session *types.InterviewSession) error {
	prepareSession(session)
	r, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO interview_sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		r.ID, r.UserID, r.Mode, r.Difficulty, r.Role, r.ResumeFilename,
		r.TechnicalSkills, r.SoftSkills, r.Projects, r.ExperienceLevel, r.ResumeSummary,
		r.Questions, r.Answers, r.Feedback, r.Status, r.CreatedAt, r.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*sessionRecord, error) {
	var r sessionRecord
	err := row.Scan(&r.ID, &r.UserID, &r.Mode, &r.Difficulty, &r.Role, &r.ResumeFilename,
		&r.TechnicalSkills, &r.SoftSkills, &r.Projects, &r.ExperienceLevel, &r.ResumeSummary,
		&r.Questions, &r.Answers, &r.Feedback, &r.Status, &r.CreatedAt, &r.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetSession retrieves a session owned by userID
func (s *PostgresStore) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.InterviewSession, error) {
	r, err := scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM interview_sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return r.decode()
}

// ListSessions retrieves the user's most recent sessions
func (s *PostgresStore) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]types.SessionSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM interview_sessions
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*types.InterviewSession
	for rows.Next() {
		r, err := scanSession(rows)
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

// SaveAnswer locks the session row, updates one answer slot and commits
func (s *PostgresStore) SaveAnswer(ctx context.Context, userID, sessionID uuid.UUID, index int, answer string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var mode, status string
	var questions, answers []byte
	err = tx.QueryRow(ctx,
		`SELECT mode, status, questions, answers FROM interview_sessions
		 WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		sessionID, userID,
	).Scan(&mode, &status, &questions, &answers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	if types.SessionStatus(status) == types.StatusCompleted {
		return ErrSessionCompleted
	}

	updated, err := applyAnswer(mode, questions, answers, index, answer)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE interview_sessions SET answers = $1 WHERE id = $2`,
		updated, sessionID,
	); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit answer: %w", err)
	}
	return nil
}

// CompleteSession stores feedback on an active session
func (s *PostgresStore) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID, fb *types.Feedback) error {
	feedback, err := marshalFeedback(fb)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE interview_sessions
		 SET status = $1, feedback = $2, completed_at = $3
		 WHERE id = $4 AND user_id = $5 AND status = $6`,
		string(types.StatusCompleted), feedback, time.Now().UTC(), sessionID, userID, string(types.StatusActive),
	)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM interview_sessions WHERE id = $1 AND user_id = $2)`,
		sessionID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return ErrSessionNotFound
	}
	return ErrSessionCompleted
}
