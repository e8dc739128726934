// Package usecase defines the interfaces and implementations for key lifecycle
// management use cases. Use cases orchestrate operations between the key
// repository, the external key provider, and the cache layer to implement the
// single-active-key lifecycle, atomic rotation with audit history, and batched
// cryptographic operations.
package usecase

import (
	"context"
	"time"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
)

// KeyRepository defines the interface for key persistence operations.
//
// Update is guarded by optimistic concurrency: the write only succeeds when
// the stored lock version still equals expectedLockVersion, and returns
// errors.ErrConflict otherwise.
type KeyRepository interface {
	Get(ctx context.Context, userID int64) (*keysDomain.Key, error)
	GetActive(ctx context.Context, userID int64) (*keysDomain.Key, error)
	Create(ctx context.Context, key *keysDomain.Key) error
	Update(ctx context.Context, key *keysDomain.Key, expectedLockVersion int64) error
	InsertHistory(ctx context.Context, history *keysDomain.KeyHistory) error
	ListHistory(ctx context.Context, userID int64, limit, offset uint) ([]*keysDomain.KeyHistory, error)
	InsertScheduledRotation(ctx context.Context, schedule *keysDomain.ScheduledRotation) error
}

// KeyUseCase defines the interface for key lifecycle business logic.
type KeyUseCase interface {
	// GenerateKey provisions a new provider key pair for the user and stores
	// it as the user's active key. Fails with domain.ErrKeyAlreadyExists when
	// the user already has an active key.
	GenerateKey(ctx context.Context, userID int64) (*keysDomain.Key, error)

	// GetActiveKey retrieves the user's active key, serving from the cache
	// when possible. Keys older than the configured maximum age are
	// deactivated on read and reported as domain.ErrKeyExpired.
	GetActiveKey(ctx context.Context, userID int64) (*keysDomain.Key, error)

	// DeactivateKey marks the user's key as inactive. The key row is kept so
	// previously written audit history stays attributable.
	DeactivateKey(ctx context.Context, userID int64) error

	// GetHistory retrieves the user's rotation audit records, most recent
	// first.
	GetHistory(ctx context.Context, userID int64, limit, offset uint) ([]*keysDomain.KeyHistory, error)
}

// RotationUseCase defines the interface for key rotation business logic.
type RotationUseCase interface {
	// RotateKey atomically replaces the user's active key with fresh provider
	// material and appends an audit record for the superseded key. Rotations
	// of keys younger than the configured minimum interval are rejected with
	// domain.ErrRotationThrottled; a concurrent rotation of the same user
	// fails with domain.ErrRotationInProgress.
	RotateKey(ctx context.Context, userID int64, reason, initiatedBy string) (*keysDomain.Key, error)

	// EmergencyRotateKey rotates immediately, bypassing the minimum rotation
	// interval throttle. The audit record is attributed to the emergency
	// initiator.
	EmergencyRotateKey(ctx context.Context, userID int64, reason string) (*keysDomain.Key, error)

	// ScheduleRotation records an accepted request to rotate the user's key
	// at a future time. Execution is delegated to an external scheduler.
	ScheduleRotation(ctx context.Context, userID int64, scheduledAt time.Time, reason string) (*keysDomain.ScheduledRotation, error)
}

// BatchCryptoUseCase defines the interface for batched cryptographic
// operations against the user's active key.
//
// Both operations preserve input order: result i always corresponds to input
// i. Batches fail as a whole on the first unrecoverable error.
type BatchCryptoUseCase interface {
	// EncryptBatch encrypts each plaintext under the user's active key and
	// returns base64-encoded ciphertexts in input order.
	EncryptBatch(ctx context.Context, userID int64, plaintexts []string) ([]string, error)

	// DecryptBatch decrypts each base64-encoded ciphertext under the user's
	// active key and returns plaintexts in input order.
	DecryptBatch(ctx context.Context, userID int64, ciphertexts []string) ([]string, error)
}

// KeyConfig holds the tunables of the key lifecycle and rotation use cases.
type KeyConfig struct {
	// MaxAge is the maximum key material age; older keys are deactivated on
	// read.
	MaxAge time.Duration

	// MinRotationInterval throttles non-emergency rotations of young keys.
	MinRotationInterval time.Duration

	// SystemVersion is recorded in every audit history row.
	SystemVersion string
}

// BatchConfig holds the tunables of the batch crypto use case.
type BatchConfig struct {
	// Size is the number of items processed per concurrent group.
	Size int

	// MaxConcurrentCalls bounds in-flight provider calls across all groups.
	MaxConcurrentCalls int64

	// MaxRetries is the number of additional attempts for transient provider
	// failures.
	MaxRetries uint64

	// RetryInitialInterval seeds the exponential backoff between attempts.
	RetryInitialInterval time.Duration
}
