// Package domain defines the core key management domain models.
//
// A Key is the single active cryptographic material reference for one user.
// The actual cryptographic operations are delegated to an external key
// provider; this service only stores an opaque reference to the provider key
// together with lifecycle metadata (activation flag, rotation version, and an
// optimistic concurrency token). Superseded keys are never deleted: every
// rotation appends an immutable KeyHistory row in the same transaction as the
// key swap, so the audit trail is always consistent with what was active at
// each point in time.
package domain

import (
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/allisson/keyring/internal/errors"
)

// Key represents the current cryptographic material reference for one user.
//
// At most one Key row per user has IsActive=true at any time; the store holds
// a single row per user (user_id is the primary key), so activation state
// never spans rows. LockVersion is an opaque concurrency token: every store
// update must supply the token it read, and the store rejects stale tokens.
type Key struct {
	UserID          int64     // Owning user, positive
	KeyMaterial     string    // Opaque provider key reference + public material
	CreatedAt       time.Time // UTC creation timestamp of the current material
	UpdatedAt       time.Time // UTC timestamp of the last mutation
	IsActive        bool      // Whether this key is authorized for crypto operations
	RotationVersion uint      // Monotonically increasing, starts at 1
	LockVersion     int64     // Optimistic concurrency token, bumped on every update
}

// NewKey creates an active version-1 key for a user with the given material.
func NewKey(userID int64, keyMaterial string) *Key {
	now := time.Now().UTC()
	return &Key{
		UserID:          userID,
		KeyMaterial:     keyMaterial,
		CreatedAt:       now,
		UpdatedAt:       now,
		IsActive:        true,
		RotationVersion: 1,
		LockVersion:     1,
	}
}

// Validate checks the key's structural invariants.
func (k *Key) Validate() error {
	if k.UserID <= 0 {
		return ErrInvalidUserID
	}
	return ValidateKeyMaterial(k.KeyMaterial)
}

// Expired reports whether the key's material is older than maxAge.
// Expired keys must never be served as active; the lifecycle manager
// deactivates them on next access.
func (k *Key) Expired(maxAge time.Duration) bool {
	return time.Since(k.CreatedAt) > maxAge
}

// Fingerprint returns the BLAKE2b-256 hex digest of the key material.
// Fingerprints are safe to log and are snapshotted into the audit trail so
// rotations can be correlated without exposing the material itself.
func (k *Key) Fingerprint() string {
	sum := blake2b.Sum256([]byte(k.KeyMaterial))
	return hex.EncodeToString(sum[:])
}

// ValidateKeyMaterial checks provider-returned key material against the
// format rules: non-blank and at least MinKeyMaterialLength characters.
func ValidateKeyMaterial(material string) error {
	if strings.TrimSpace(material) == "" {
		return ErrInvalidKeyMaterial
	}
	if len(material) < MinKeyMaterialLength {
		return errors.Wrap(ErrInvalidKeyMaterial, "key material too short")
	}
	return nil
}
