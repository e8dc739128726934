package domain

import (
	"github.com/allisson/keyring/internal/errors"
)

// Key lifecycle and rotation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors so
// callers can classify failures with errors.Is while still receiving a stable
// machine-readable message and a recovery hint. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrInvalidUserID indicates the user identifier is not a positive integer.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidUserID = errors.Wrap(errors.ErrInvalidInput, "user id must be positive")

	// ErrInvalidKeyMaterial indicates provider-returned key material failed the
	// format or minimum-length rules and was rejected before persistence.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidKeyMaterial = errors.Wrap(errors.ErrInvalidInput, "invalid key material")

	// ErrInvalidRotationReason indicates the rotation reason is blank or exceeds
	// the bounded classification length.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidRotationReason = errors.Wrap(errors.ErrInvalidInput, "invalid rotation reason")

	// ErrInvalidBatchItem indicates a batch contains an empty entry, or a
	// decrypt batch contains an entry that is not validly encoded.
	//
	// Batches fail as a whole: partial success would silently lose data.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidBatchItem = errors.Wrap(errors.ErrInvalidInput, "invalid batch item")

	// ErrInvalidScheduleTime indicates a scheduled rotation time is not
	// strictly in the future.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidScheduleTime = errors.Wrap(errors.ErrInvalidInput, "scheduled time must be in the future")

	// ErrKeyNotFound indicates the user has no active key. Recovery: generate
	// a new key.
	//
	// HTTP Status: 404 Not Found
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "no active key for user, generate a new key")

	// ErrKeyExpired indicates the user's key exceeded the maximum material age
	// and was deactivated on read. Recovery: generate or rotate to a new key.
	//
	// HTTP Status: 404 Not Found
	ErrKeyExpired = errors.Wrap(errors.ErrNotFound, "key expired, generate or rotate to a new key")

	// ErrKeyAlreadyExists indicates an active key already exists for the user
	// and GenerateKey was not invoked as part of a rotation.
	//
	// HTTP Status: 409 Conflict
	ErrKeyAlreadyExists = errors.Wrap(errors.ErrConflict, "active key already exists for user")

	// ErrKeyAlreadyInactive indicates a deactivation was requested for a key
	// that is already inactive.
	//
	// HTTP Status: 409 Conflict
	ErrKeyAlreadyInactive = errors.Wrap(errors.ErrConflict, "key is already inactive")

	// ErrRotationInProgress indicates another rotation for the same user won a
	// concurrent update race. Recovery: back off and retry after the in-flight
	// rotation completes.
	//
	// HTTP Status: 409 Conflict
	ErrRotationInProgress = errors.Wrap(errors.ErrConflict, "rotation in progress, retry after rotation completes")

	// ErrRotationThrottled indicates the key is younger than the configured
	// minimum rotation interval. Emergency rotations bypass this throttle.
	//
	// HTTP Status: 409 Conflict
	ErrRotationThrottled = errors.Wrap(errors.ErrConflict, "key rotated too recently, retry later")

	// ErrProviderUnavailable indicates the external key provider failed with a
	// transient condition and internal retries were exhausted.
	//
	// HTTP Status: 503 Service Unavailable
	ErrProviderUnavailable = errors.Wrap(errors.ErrUnavailable, "key provider unavailable, retry later")

	// ErrCryptoFailed indicates the external key provider permanently rejected
	// an encrypt or decrypt request (invalid key reference or malformed
	// ciphertext). Never retried.
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrCryptoFailed = errors.Wrap(errors.ErrInvalidInput, "cryptographic operation failed")
)
