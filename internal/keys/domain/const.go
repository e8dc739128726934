package domain

// Key material constraints.
const (
	// MinKeyMaterialLength is the minimum accepted length for provider key
	// material. Shorter values are rejected as malformed provider output.
	MinKeyMaterialLength = 16

	// MaxRotationReasonLength bounds the rotation reason classification string
	// persisted in the audit trail.
	MaxRotationReasonLength = 100
)

// Well-known rotation reasons. Reasons are free-form (bounded) strings; these
// constants cover the classifications produced by this service itself.
const (
	RotationReasonScheduled  = "scheduled"
	RotationReasonEmergency  = "emergency"
	RotationReasonCompliance = "compliance"
	RotationReasonManual     = "manual"
)

// Rotation initiator identities recorded in the audit trail.
const (
	InitiatorSystem    = "system"
	InitiatorOperator  = "operator"
	InitiatorEmergency = "emergency"
)

// Scheduled rotation statuses.
const (
	ScheduleStatusPending   = "pending"
	ScheduleStatusCompleted = "completed"
	ScheduleStatusCanceled  = "canceled"
)
