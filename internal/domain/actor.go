package domain

import "time"

// ActorRole enumerates operator roles carried in the auth token.
type ActorRole string

const (
	ActorRoleAgent    ActorRole = "AGENT"
	ActorRoleTeamLead ActorRole = "TEAM_LEAD"
	ActorRoleAdmin    ActorRole = "ADMIN"
	ActorRoleSystem   ActorRole = "SYSTEM"
)

// Actor identifies who performed a mutation. Identity management lives in an
// external service; this is the lookup shape the engine needs to resolve a
// display name for history entries.
type Actor struct {
	ID          string
	TenantID    string
	DisplayName string
	Role        ActorRole
	Active      bool
	CreatedAt   time.Time
}
