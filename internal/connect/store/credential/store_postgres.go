package credential

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"allad/internal/connect/models"
	"allad/internal/sentinel"
)

// PostgresStore persists platform credentials in PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB, opts ...Option) *PostgresStore {
	cfg := newSettings(opts...)
	return &PostgresStore{db: db, now: cfg.now}
}

const credentialColumns = `
	id, team_id, platform, account_id, account_name,
	access_token, refresh_token, scope,
	expires_at, is_active, error_message, last_synced_at,
	data, created_at, updated_at
`

// Upsert inserts or updates the credential keyed on the
// (team_id, platform, account_id) uniqueness constraint. Conflicting inserts
// update in place rather than creating duplicates.
func (s *PostgresStore) Upsert(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential is required: %w", sentinel.ErrInvalidInput)
	}
	id := cred.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	data, err := json.Marshal(cred.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal credential data: %w", err)
	}

	query := `
		INSERT INTO platform_credentials (
			id, team_id, platform, account_id, account_name,
			access_token, refresh_token, scope,
			expires_at, is_active, error_message, last_synced_at, data,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		ON CONFLICT (team_id, platform, account_id) DO UPDATE SET
			account_name   = EXCLUDED.account_name,
			access_token   = EXCLUDED.access_token,
			refresh_token  = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), platform_credentials.refresh_token),
			scope          = EXCLUDED.scope,
			expires_at     = EXCLUDED.expires_at,
			is_active      = EXCLUDED.is_active,
			error_message  = EXCLUDED.error_message,
			last_synced_at = EXCLUDED.last_synced_at,
			data           = EXCLUDED.data,
			updated_at     = now()
		RETURNING ` + credentialColumns

	row := s.db.QueryRowContext(ctx, query,
		id,
		cred.TeamID,
		cred.Platform.String(),
		cred.AccountID,
		cred.AccountName,
		cred.AccessToken,
		cred.RefreshToken,
		cred.Scope,
		nullTime(cred.ExpiresAt),
		cred.IsActive,
		nullString(cred.ErrorMessage),
		nullTime(cred.LastSyncedAt),
		data,
	)
	stored, err := scanCredential(row)
	if err != nil {
		return nil, fmt.Errorf("upsert credential: %w", err)
	}
	return stored, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM platform_credentials WHERE id = $1`
	cred, err := scanCredential(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return cred, nil
}

func (s *PostgresStore) Find(ctx context.Context, teamID uuid.UUID, platform models.Platform, accountID string) (*models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM platform_credentials
		WHERE team_id = $1 AND platform = $2 AND account_id = $3
	`
	cred, err := scanCredential(s.db.QueryRowContext(ctx, query, teamID, platform.String(), accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return cred, nil
}

func (s *PostgresStore) List(ctx context.Context, teamID uuid.UUID, platform models.Platform) ([]*models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM platform_credentials
		WHERE team_id = $1 AND ($2 = '' OR platform = $2)
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, teamID, platform.String())
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*models.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials rows: %w", err)
	}
	return out, nil
}

// ListDue selects the refresh scan's working set: active rows with a refresh
// token whose expiry falls inside the window, on refresh-capable platforms.
func (s *PostgresStore) ListDue(ctx context.Context, now time.Time, window time.Duration) ([]*models.Credential, error) {
	platforms := make([]string, 0, len(models.RefreshablePlatforms))
	for _, p := range models.RefreshablePlatforms {
		platforms = append(platforms, p.String())
	}
	query := `
		SELECT ` + credentialColumns + `
		FROM platform_credentials
		WHERE is_active = TRUE
		  AND refresh_token <> ''
		  AND expires_at IS NOT NULL
		  AND expires_at < $1
		  AND platform = ANY($2)
		ORDER BY expires_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, now.Add(window), platforms)
	if err != nil {
		return nil, fmt.Errorf("list due credentials: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*models.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due credential: %w", err)
		}
		out = append(out, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due credentials rows: %w", err)
	}
	return out, nil
}

// UpdateTokens rotates tokens conditionally on the previously-read expiry so
// concurrent refreshes of the same credential degrade to a stale no-op
// instead of double-writing.
func (s *PostgresStore) UpdateTokens(ctx context.Context, id uuid.UUID, prevExpiresAt *time.Time, accessToken, refreshToken, scope string, expiresAt *time.Time, syncedAt time.Time) error {
	query := `
		UPDATE platform_credentials
		SET access_token   = $2,
		    refresh_token  = COALESCE(NULLIF($3, ''), refresh_token),
		    scope          = COALESCE(NULLIF($4, ''), scope),
		    expires_at     = $5,
		    last_synced_at = $6,
		    error_message  = NULL,
		    updated_at     = now()
		WHERE id = $1 AND expires_at IS NOT DISTINCT FROM $7
	`
	res, err := s.db.ExecContext(ctx, query, id, accessToken, refreshToken, scope, nullTime(expiresAt), syncedAt, nullTime(prevExpiresAt))
	if err != nil {
		return fmt.Errorf("update credential tokens: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential tokens rows: %w", err)
	}
	if affected == 0 {
		// Either the row vanished or another refresh rotated it first.
		if _, findErr := s.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return sentinel.ErrStaleWrite
	}
	return nil
}

func (s *PostgresStore) UpdateIdentity(ctx context.Context, id uuid.UUID, accountID, accountName string, data models.PlatformData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal credential data: %w", err)
	}
	query := `
		UPDATE platform_credentials
		SET account_id = $2, account_name = $3, data = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, accountID, accountName, payload)
	if err != nil {
		return fmt.Errorf("update credential identity: %w", err)
	}
	return requireAffected(res, "update credential identity")
}

func (s *PostgresStore) Deactivate(ctx context.Context, id uuid.UUID, reason string) error {
	stamped := fmt.Sprintf("[%s] %s", s.now().UTC().Format(time.RFC3339), reason)
	query := `
		UPDATE platform_credentials
		SET is_active = FALSE, error_message = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, stamped)
	if err != nil {
		return fmt.Errorf("deactivate credential: %w", err)
	}
	return requireAffected(res, "deactivate credential")
}

func (s *PostgresStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE platform_credentials
		SET is_active = $2,
		    error_message = CASE WHEN $2 THEN NULL ELSE error_message END,
		    updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set credential active: %w", err)
	}
	return requireAffected(res, "set credential active")
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM platform_credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return requireAffected(res, "delete credential")
}

func requireAffected(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

type credentialRow interface {
	Scan(dest ...any) error
}

func scanCredential(row credentialRow) (*models.Credential, error) {
	var (
		cred         models.Credential
		platform     string
		expiresAt    sql.NullTime
		errorMessage sql.NullString
		lastSynced   sql.NullTime
		data         []byte
	)
	if err := row.Scan(
		&cred.ID, &cred.TeamID, &platform, &cred.AccountID, &cred.AccountName,
		&cred.AccessToken, &cred.RefreshToken, &cred.Scope,
		&expiresAt, &cred.IsActive, &errorMessage, &lastSynced,
		&data, &cred.CreatedAt, &cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cred.Platform = models.Platform(platform)
	if expiresAt.Valid {
		cred.ExpiresAt = &expiresAt.Time
	}
	if errorMessage.Valid {
		cred.ErrorMessage = errorMessage.String
	}
	if lastSynced.Valid {
		cred.LastSyncedAt = &lastSynced.Time
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cred.Data); err != nil {
			return nil, fmt.Errorf("unmarshal credential data: %w", err)
		}
	}
	return &cred, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
