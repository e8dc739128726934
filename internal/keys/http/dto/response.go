package dto

import (
	"time"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
)

// KeyResponse represents a key in API responses.
// SECURITY: The raw key material (the provider key reference) is never
// exposed over the API; only its fingerprint is returned so callers can
// correlate with the audit history.
type KeyResponse struct {
	UserID          int64     `json:"user_id"`
	KeyFingerprint  string    `json:"key_fingerprint"`
	IsActive        bool      `json:"is_active"`
	RotationVersion uint      `json:"rotation_version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MapKeyToResponse converts a domain key to an API response.
func MapKeyToResponse(key *keysDomain.Key) KeyResponse {
	return KeyResponse{
		UserID:          key.UserID,
		KeyFingerprint:  key.Fingerprint(),
		IsActive:        key.IsActive,
		RotationVersion: key.RotationVersion,
		CreatedAt:       key.CreatedAt,
		UpdatedAt:       key.UpdatedAt,
	}
}

// KeyHistoryResponse represents one rotation audit record in API responses.
// The prior key material itself is excluded; its fingerprint identifies it.
type KeyHistoryResponse struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	PriorKeyFingerprint string    `json:"prior_key_fingerprint"`
	RotationVersion     uint      `json:"rotation_version"`
	RotationDate        time.Time `json:"rotation_date"`
	RotationReason      string    `json:"rotation_reason"`
	InitiatedBy         string    `json:"initiated_by"`
	SystemVersion       string    `json:"system_version"`
}

// ListKeyHistoryResponse represents a paginated rotation history in API responses.
type ListKeyHistoryResponse struct {
	Data []KeyHistoryResponse `json:"data"`
}

// MapHistoriesToListResponse converts domain audit records to a list response.
func MapHistoriesToListResponse(histories []*keysDomain.KeyHistory) ListKeyHistoryResponse {
	data := make([]KeyHistoryResponse, 0, len(histories))
	for _, history := range histories {
		data = append(data, KeyHistoryResponse{
			ID:                  history.ID,
			UserID:              history.UserID,
			PriorKeyFingerprint: history.PriorKeyFingerprint,
			RotationVersion:     history.RotationVersion,
			RotationDate:        history.RotationDate,
			RotationReason:      history.RotationReason,
			InitiatedBy:         history.InitiatedBy,
			SystemVersion:       history.SystemVersion,
		})
	}

	return ListKeyHistoryResponse{
		Data: data,
	}
}

// ScheduledRotationResponse represents an accepted rotation schedule in API responses.
type ScheduledRotationResponse struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// MapScheduleToResponse converts a domain scheduled rotation to an API response.
func MapScheduleToResponse(schedule *keysDomain.ScheduledRotation) ScheduledRotationResponse {
	return ScheduledRotationResponse{
		ID:          schedule.ID.String(),
		UserID:      schedule.UserID,
		ScheduledAt: schedule.ScheduledAt,
		Reason:      schedule.Reason,
		Status:      schedule.Status,
		CreatedAt:   schedule.CreatedAt,
	}
}

// BatchResponse represents the results of a batch crypto operation.
// Item i corresponds to item i of the request.
type BatchResponse struct {
	Items []string `json:"items"`
}
