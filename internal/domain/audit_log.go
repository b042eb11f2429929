package domain

import "time"

// Bounds applied to request metadata before persisting.
const (
	AuditSourceIPMaxLen  = 45
	AuditUserAgentMaxLen = 255
)

// AuditAction is a free-form tag describing what happened.
type AuditAction string

const (
	AuditActionStatusChange     AuditAction = "status_change"
	AuditActionAssignmentChange AuditAction = "assignment_change"
	AuditActionGroupChange      AuditAction = "group_change"
	AuditActionResolve          AuditAction = "resolve"
	AuditActionCreate           AuditAction = "create"
)

// AuditLogEntry is a generic append-only before/after snapshot of an entity
// mutation. PreviousState/NewState are opaque to the engine; producers pass
// structured values and the storage boundary serializes them.
type AuditLogEntry struct {
	ID            string
	TenantID      string
	EntityType    string
	EntityID      string
	Action        AuditAction
	PreviousState map[string]any
	NewState      map[string]any
	ActorID       *string
	SourceIP      *string
	UserAgent     *string
	OccurredAt    time.Time
}
