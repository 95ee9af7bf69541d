// Package db persists users and interview sessions in PostgreSQL or SQLite.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/interview-assistant/internal/types"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var (
	// ErrSessionNotFound is returned when a session does not exist or belongs to another user
	ErrSessionNotFound = errors.New("interview session not found")
	// ErrSessionCompleted is returned when mutating a completed session
	ErrSessionCompleted = errors.New("interview session is already completed")
	// ErrInvalidQuestionIndex is returned when an answer index is outside the question set
	ErrInvalidQuestionIndex = errors.New("question index is out of range")
)

// Store is the persistence surface used by the HTTP handlers and CLI.
// Lookups return nil, nil when nothing matches.
type Store interface {
	// UpsertUserByEmail returns the user with email, creating it with username if absent
	UpsertUserByEmail(ctx context.Context, email, username string) (*types.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)

	// CreateSession inserts s, assigning ID, CreatedAt and Status when unset
	CreateSession(ctx context.Context, s *types.InterviewSession) error
	// GetSession returns the session only when it belongs to userID
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.InterviewSession, error)
	// ListSessions returns the user's sessions, newest first
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]types.SessionSummary, error)
	// SaveAnswer stores answer at index in a single read-modify-write transaction
	SaveAnswer(ctx context.Context, userID, sessionID uuid.UUID, index int, answer string) error
	// CompleteSession stores feedback and flips the session to completed exactly once
	CompleteSession(ctx context.Context, userID, sessionID uuid.UUID, fb *types.Feedback) error

	Ping(ctx context.Context) error
	// CheckSchema fails when a session column is missing
	CheckSchema(ctx context.Context) error
	Close() error
}

// Open connects to databaseURL and applies the schema. postgres:// and
// postgresql:// URLs select PostgreSQL; sqlite:// URLs and bare paths select SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case databaseURL == "":
		return nil, fmt.Errorf("database URL is empty")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return OpenPostgres(ctx, databaseURL)
	default:
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	}
}

// Dialect names the backend selected for databaseURL.
func Dialect(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func migration(dialect string) (string, error) {
	data, err := migrationFS.ReadFile("migrations/" + dialect + ".sql")
	if err != nil {
		return "", fmt.Errorf("failed to read %s migration: %w", dialect, err)
	}
	return string(data), nil
}

// splitStatements breaks a migration file into individual statements.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
