package oauthstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"allad/internal/connect/models"
	"allad/internal/sentinel"
)

// PostgresStore persists OAuth states in PostgreSQL. Used when Redis is not
// configured; the refresh worker's sweep provides TTL enforcement.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres constructs a PostgreSQL-backed OAuth state store.
func NewPostgres(db *sql.DB, opts ...Option) *PostgresStore {
	cfg := newSettings(opts...)
	return &PostgresStore{db: db, now: cfg.now}
}

func (s *PostgresStore) Save(ctx context.Context, state *models.OAuthState) error {
	if state == nil || state.State == "" {
		return fmt.Errorf("state is required: %w", sentinel.ErrInvalidInput)
	}
	query := `
		INSERT INTO oauth_states (state, platform, user_id, team_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		state.State,
		state.Platform.String(),
		state.UserID,
		state.TeamID,
		state.CreatedAt,
		state.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// Consume deletes the matching row and returns it in one statement, so a
// replayed callback cannot observe the state a second time.
func (s *PostgresStore) Consume(ctx context.Context, state string, platform models.Platform) (*models.OAuthState, error) {
	query := `
		DELETE FROM oauth_states
		WHERE state = $1 AND platform = $2
		RETURNING state, platform, user_id, team_id, created_at, expires_at
	`
	var (
		stored      models.OAuthState
		platformStr string
	)
	err := s.db.QueryRowContext(ctx, query, state, platform.String()).Scan(
		&stored.State, &platformStr, &stored.UserID, &stored.TeamID, &stored.CreatedAt, &stored.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("oauth state: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}
	stored.Platform = models.Platform(platformStr)
	if stored.Expired(s.now()) {
		return nil, fmt.Errorf("oauth state: %w", sentinel.ErrExpired)
	}
	return &stored, nil
}

// DeleteExpired removes states whose TTL elapsed before consumption.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired oauth states: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired oauth states rows: %w", err)
	}
	return int(rows), nil
}
