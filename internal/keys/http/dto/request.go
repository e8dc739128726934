// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	customValidation "github.com/allisson/keyring/internal/validation"
)

// maxBatchItems bounds the number of items accepted in one batch request.
const maxBatchItems = 1000

// RotateKeyRequest contains the parameters for a key rotation.
type RotateKeyRequest struct {
	Reason      string `json:"reason"`
	InitiatedBy string `json:"initiated_by"`
}

// Validate checks if the rotate key request is valid.
func (r *RotateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, keysDomain.MaxRotationReasonLength),
		),
		validation.Field(&r.InitiatedBy,
			customValidation.NoWhitespace,
			validation.Length(0, 100),
		),
	)
}

// EmergencyRotateKeyRequest contains the parameters for an emergency rotation.
type EmergencyRotateKeyRequest struct {
	Reason string `json:"reason"`
}

// Validate checks if the emergency rotate key request is valid.
func (r *EmergencyRotateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, keysDomain.MaxRotationReasonLength),
		),
	)
}

// ScheduleRotationRequest contains the parameters for scheduling a rotation.
// ScheduledAt must be an RFC 3339 timestamp strictly in the future.
type ScheduleRotationRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason"`
}

// Validate checks if the schedule rotation request is valid.
func (r *ScheduleRotationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ScheduledAt, validation.Required),
		validation.Field(&r.Reason,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, keysDomain.MaxRotationReasonLength),
		),
	)
}

// EncryptBatchRequest contains the plaintexts for a batch encrypt operation.
type EncryptBatchRequest struct {
	Items []string `json:"items"`
}

// Validate checks if the encrypt batch request is valid.
func (r *EncryptBatchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Items,
			validation.Required,
			validation.Length(1, maxBatchItems),
			validation.Each(validation.Required),
		),
	)
}

// DecryptBatchRequest contains the base64-encoded ciphertexts for a batch
// decrypt operation.
type DecryptBatchRequest struct {
	Items []string `json:"items"`
}

// Validate checks if the decrypt batch request is valid.
func (r *DecryptBatchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Items,
			validation.Required,
			validation.Length(1, maxBatchItems),
			validation.Each(validation.Required, customValidation.Base64),
		),
	)
}
