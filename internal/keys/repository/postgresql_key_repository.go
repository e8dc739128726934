// Package repository implements key persistence for PostgreSQL and MySQL.
//
// The keys table holds exactly one row per user (the current key), guarded by
// an optimistic lock_version token: updates must supply the token they read
// and affect zero rows when another writer got there first. Audit history and
// scheduled rotations are append-only tables.
package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/allisson/keyring/internal/database"
	apperrors "github.com/allisson/keyring/internal/errors"
	keysDomain "github.com/allisson/keyring/internal/keys/domain"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pqUniqueViolation = "23505"

// PostgreSQLKeyRepository implements key persistence for PostgreSQL databases.
type PostgreSQLKeyRepository struct {
	db *sql.DB
}

// Get retrieves a user's key row regardless of its activation state.
func (p *PostgreSQLKeyRepository) Get(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT user_id, key_material, created_at, updated_at, is_active, rotation_version, lock_version
			  FROM keys
			  WHERE user_id = $1`

	var key keysDomain.Key
	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&key.UserID,
		&key.KeyMaterial,
		&key.CreatedAt,
		&key.UpdatedAt,
		&key.IsActive,
		&key.RotationVersion,
		&key.LockVersion,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key")
	}

	return &key, nil
}

// GetActive retrieves a user's key only when it is active.
func (p *PostgreSQLKeyRepository) GetActive(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT user_id, key_material, created_at, updated_at, is_active, rotation_version, lock_version
			  FROM keys
			  WHERE user_id = $1 AND is_active = true`

	var key keysDomain.Key
	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&key.UserID,
		&key.KeyMaterial,
		&key.CreatedAt,
		&key.UpdatedAt,
		&key.IsActive,
		&key.RotationVersion,
		&key.LockVersion,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active key")
	}

	return &key, nil
}

// Create inserts a new key row. Returns errors.ErrConflict when a row already
// exists for the user.
func (p *PostgreSQLKeyRepository) Create(ctx context.Context, key *keysDomain.Key) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO keys (user_id, key_material, created_at, updated_at, is_active, rotation_version, lock_version)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.UserID,
		key.KeyMaterial,
		key.CreatedAt,
		key.UpdatedAt,
		key.IsActive,
		key.RotationVersion,
		key.LockVersion,
	)
	if err != nil {
		var pqErr *pq.Error
		if apperrors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return apperrors.Wrap(apperrors.ErrConflict, "key already exists for user")
		}
		return apperrors.Wrap(err, "failed to create key")
	}
	return nil
}

// Update applies a guarded update of a user's key row. The write succeeds
// only when the stored lock_version still equals expectedLockVersion; the new
// token from key.LockVersion is written in the same statement. Returns
// errors.ErrConflict when a concurrent writer already advanced the token.
func (p *PostgreSQLKeyRepository) Update(
	ctx context.Context,
	key *keysDomain.Key,
	expectedLockVersion int64,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE keys
			  SET key_material = $1, updated_at = $2, is_active = $3, rotation_version = $4, lock_version = $5
			  WHERE user_id = $6 AND lock_version = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		key.KeyMaterial,
		key.UpdatedAt,
		key.IsActive,
		key.RotationVersion,
		key.LockVersion,
		key.UserID,
		expectedLockVersion,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update key")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read update result")
	}
	if rows == 0 {
		return apperrors.Wrap(apperrors.ErrConflict, "key was modified concurrently")
	}
	return nil
}

// InsertHistory appends an audit record for a completed rotation.
func (p *PostgreSQLKeyRepository) InsertHistory(
	ctx context.Context,
	history *keysDomain.KeyHistory,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_history (user_id, prior_key_material, prior_key_fingerprint, rotation_version, rotation_date, rotation_reason, initiated_by, system_version)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		history.UserID,
		history.PriorKeyMaterial,
		history.PriorKeyFingerprint,
		history.RotationVersion,
		history.RotationDate,
		history.RotationReason,
		history.InitiatedBy,
		history.SystemVersion,
	).Scan(&history.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert key history")
	}
	return nil
}

// ListHistory retrieves a user's rotation audit records, most recent first.
func (p *PostgreSQLKeyRepository) ListHistory(
	ctx context.Context,
	userID int64,
	limit, offset uint,
) ([]*keysDomain.KeyHistory, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, prior_key_material, prior_key_fingerprint, rotation_version, rotation_date, rotation_reason, initiated_by, system_version
			  FROM key_history
			  WHERE user_id = $1
			  ORDER BY rotation_date DESC, id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key history")
	}
	defer func() { _ = rows.Close() }()

	var histories []*keysDomain.KeyHistory
	for rows.Next() {
		var history keysDomain.KeyHistory
		err := rows.Scan(
			&history.ID,
			&history.UserID,
			&history.PriorKeyMaterial,
			&history.PriorKeyFingerprint,
			&history.RotationVersion,
			&history.RotationDate,
			&history.RotationReason,
			&history.InitiatedBy,
			&history.SystemVersion,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan key history")
		}
		histories = append(histories, &history)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list key history")
	}

	return histories, nil
}

// InsertScheduledRotation records an accepted future rotation request.
func (p *PostgreSQLKeyRepository) InsertScheduledRotation(
	ctx context.Context,
	schedule *keysDomain.ScheduledRotation,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO scheduled_rotations (id, user_id, scheduled_at, reason, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		schedule.ID,
		schedule.UserID,
		schedule.ScheduledAt,
		schedule.Reason,
		schedule.Status,
		schedule.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert scheduled rotation")
	}
	return nil
}

// NewPostgreSQLKeyRepository creates a new PostgreSQL key repository instance.
func NewPostgreSQLKeyRepository(db *sql.DB) *PostgreSQLKeyRepository {
	return &PostgreSQLKeyRepository{db: db}
}
