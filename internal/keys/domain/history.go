package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyHistory is an immutable audit record of a superseded key. Exactly one
// row is written per completed rotation, in the same transaction as the key
// swap. Rows are append-only and never updated or deleted within the
// compliance retention window.
type KeyHistory struct {
	ID                  int64     // Monotonic identifier, assigned at insert
	UserID              int64     // Owning user
	PriorKeyMaterial    string    // Snapshot of the material being retired
	PriorKeyFingerprint string    // BLAKE2b-256 hex digest of the prior material
	RotationVersion     uint      // Version number being retired
	RotationDate        time.Time // UTC timestamp of the rotation
	RotationReason      string    // Bounded-length classification (e.g. "scheduled")
	InitiatedBy         string    // Actor identity: system, operator, or emergency
	SystemVersion       string    // Version tag of the software performing the rotation
}

// NewKeyHistory snapshots the given key into an audit record.
func NewKeyHistory(key *Key, reason, initiatedBy, systemVersion string) *KeyHistory {
	return &KeyHistory{
		UserID:              key.UserID,
		PriorKeyMaterial:    key.KeyMaterial,
		PriorKeyFingerprint: key.Fingerprint(),
		RotationVersion:     key.RotationVersion,
		RotationDate:        time.Now().UTC(),
		RotationReason:      reason,
		InitiatedBy:         initiatedBy,
		SystemVersion:       systemVersion,
	}
}

// Validate checks the history record's structural invariants.
func (h *KeyHistory) Validate() error {
	if h.UserID <= 0 {
		return ErrInvalidUserID
	}
	return ValidateRotationReason(h.RotationReason)
}

// ValidateRotationReason checks a rotation reason against the bounded-length
// classification rules.
func ValidateRotationReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrInvalidRotationReason
	}
	if len(reason) > MaxRotationReasonLength {
		return ErrInvalidRotationReason
	}
	return nil
}

// ScheduledRotation records an accepted request for a future rotation.
// Timed execution is delegated to an external scheduler that polls pending
// rows and calls RotateKey; this service only records acceptance.
type ScheduledRotation struct {
	ID          uuid.UUID
	UserID      int64
	ScheduledAt time.Time // Strictly in the future at acceptance time
	Reason      string
	Status      string // pending, completed, or canceled
	CreatedAt   time.Time
}

// NewScheduledRotation creates a pending scheduled rotation request.
func NewScheduledRotation(userID int64, scheduledAt time.Time, reason string) *ScheduledRotation {
	return &ScheduledRotation{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      userID,
		ScheduledAt: scheduledAt.UTC(),
		Reason:      reason,
		Status:      ScheduleStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
}
