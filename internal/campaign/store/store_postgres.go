package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"allad/internal/campaign/models"
	connect "allad/internal/connect/models"
	"allad/internal/sentinel"
)

// PostgresStore persists the campaign cache in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed campaign store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const campaignColumns = `
	id, credential_id, team_id, platform, remote_id,
	name, status, daily_budget, currency,
	synced_at, created_at, updated_at
`

// UpsertBatch inserts or updates campaigns keyed on the
// (credential_id, remote_id) uniqueness constraint.
func (s *PostgresStore) UpsertBatch(ctx context.Context, campaigns []*models.Campaign) error {
	if len(campaigns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT INTO campaigns (
			id, credential_id, team_id, platform, remote_id,
			name, status, daily_budget, currency, synced_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (credential_id, remote_id) DO UPDATE SET
			name         = EXCLUDED.name,
			status       = EXCLUDED.status,
			daily_budget = EXCLUDED.daily_budget,
			currency     = EXCLUDED.currency,
			synced_at    = EXCLUDED.synced_at,
			updated_at   = now()`

	for _, c := range campaigns {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err := tx.ExecContext(ctx, query,
			id,
			c.CredentialID,
			c.TeamID,
			c.Platform.String(),
			c.RemoteID,
			c.Name,
			string(c.Status),
			c.DailyBudget,
			c.Currency,
			c.SyncedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert campaign %s: %w", c.RemoteID, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	return scanCampaign(s.db.QueryRowContext(ctx, query, id))
}

// ListByCredential returns a credential's campaigns, name-ordered.
func (s *PostgresStore) ListByCredential(ctx context.Context, credentialID uuid.UUID) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE credential_id = $1 ORDER BY name`
	return s.queryCampaigns(ctx, query, credentialID)
}

// ListByTeam returns a team's campaigns, optionally narrowed to one platform.
func (s *PostgresStore) ListByTeam(ctx context.Context, teamID uuid.UUID, platform connect.Platform) ([]*models.Campaign, error) {
	if platform == "" {
		query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE team_id = $1 ORDER BY name`
		return s.queryCampaigns(ctx, query, teamID)
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE team_id = $1 AND platform = $2 ORDER BY name`
	return s.queryCampaigns(ctx, query, teamID, platform.String())
}

func (s *PostgresStore) UpdateBudget(ctx context.Context, id uuid.UUID, dailyBudget int64) error {
	query := `UPDATE campaigns SET daily_budget = $2, updated_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, dailyBudget)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	query := `UPDATE campaigns SET status = $2, updated_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) queryCampaigns(ctx context.Context, query string, args ...any) ([]*models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var (
		c        models.Campaign
		platform string
		status   string
	)
	err := row.Scan(
		&c.ID,
		&c.CredentialID,
		&c.TeamID,
		&platform,
		&c.RemoteID,
		&c.Name,
		&status,
		&c.DailyBudget,
		&c.Currency,
		&c.SyncedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	c.Platform = connect.Platform(platform)
	c.Status = models.Status(status)
	return &c, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
