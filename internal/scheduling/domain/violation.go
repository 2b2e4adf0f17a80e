package domain

import "time"

// ViolationKind classifies why a candidate placement was rejected.
type ViolationKind string

const (
	ViolationOverlap    ViolationKind = "Overlap"
	ViolationSpecialist ViolationKind = "Specialist"
	ViolationEquipment  ViolationKind = "Equipment"
	ViolationTravel     ViolationKind = "Travel"
	ViolationTimeWindow ViolationKind = "TimeWindow"
	// ViolationExhaustion is synthesised by the engine when every candidate
	// across all placement scopes has failed for an occurrence.
	ViolationExhaustion ViolationKind = "Exhaustion"
)

// ConstraintViolation is the structured reason a candidate was rejected.
// Violations are values, not errors: rejection is the normal mode of
// operation for a greedy constructor.
type ConstraintViolation struct {
	Kind       ViolationKind
	Reason     string
	ActivityID string
	Date       time.Time
	StartTime  ClockTime
}
