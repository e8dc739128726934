package repository

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/keyring/internal/database"
	apperrors "github.com/allisson/keyring/internal/errors"
	keysDomain "github.com/allisson/keyring/internal/keys/domain"
)

// mysqlDuplicateEntry is the MySQL error number for unique constraint violations.
const mysqlDuplicateEntry = 1062

// MySQLKeyRepository implements key persistence for MySQL databases.
type MySQLKeyRepository struct {
	db *sql.DB
}

// Get retrieves a user's key row regardless of its activation state.
func (m *MySQLKeyRepository) Get(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT user_id, key_material, created_at, updated_at, is_active, rotation_version, lock_version
			  FROM keys
			  WHERE user_id = ?`

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
func (m *MySQLKeyRepository) GetActive(ctx context.Context, userID int64) (*keysDomain.Key, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT user_id, key_material, created_at, updated_at, is_active, rotation_version, lock_version
			  FROM keys
			  WHERE user_id = ? AND is_active = true`

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
func (m *MySQLKeyRepository) Create(ctx context.Context, key *keysDomain.Key) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO keys (user_id, key_material, created_at, updated_at, is_active, rotation_version, lock_version)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

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
		var mysqlErr *mysql.MySQLError
		if apperrors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
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
func (m *MySQLKeyRepository) Update(
	ctx context.Context,
	key *keysDomain.Key,
	expectedLockVersion int64,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE keys
			  SET key_material = ?, updated_at = ?, is_active = ?, rotation_version = ?, lock_version = ?
			  WHERE user_id = ? AND lock_version = ?`

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
func (m *MySQLKeyRepository) InsertHistory(
	ctx context.Context,
	history *keysDomain.KeyHistory,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_history (user_id, prior_key_material, prior_key_fingerprint, rotation_version, rotation_date, rotation_reason, initiated_by, system_version)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
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
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert key history")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to read inserted history id")
	}
	history.ID = id
	return nil
}

// ListHistory retrieves a user's rotation audit records, most recent first.
func (m *MySQLKeyRepository) ListHistory(
	ctx context.Context,
	userID int64,
	limit, offset uint,
) ([]*keysDomain.KeyHistory, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, prior_key_material, prior_key_fingerprint, rotation_version, rotation_date, rotation_reason, initiated_by, system_version
			  FROM key_history
			  WHERE user_id = ?
			  ORDER BY rotation_date DESC, id DESC
			  LIMIT ? OFFSET ?`

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
func (m *MySQLKeyRepository) InsertScheduledRotation(
	ctx context.Context,
	schedule *keysDomain.ScheduledRotation,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO scheduled_rotations (id, user_id, scheduled_at, reason, status, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := schedule.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal schedule id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// NewMySQLKeyRepository creates a new MySQL key repository instance.
func NewMySQLKeyRepository(db *sql.DB) *MySQLKeyRepository {
	return &MySQLKeyRepository{db: db}
}
