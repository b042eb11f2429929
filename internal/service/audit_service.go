package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	"github.com/spec-kit/ticket-lifecycle/internal/repository"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

// RequestMeta carries request-scoped metadata into the audit trail.
type RequestMeta struct {
	SourceIP  string
	UserAgent string
}

// AuditInput describes one audit entry.
type AuditInput struct {
	TenantID      string
	EntityType    string
	EntityID      string
	Action        domain.AuditAction
	PreviousState map[string]any
	NewState      map[string]any
	ActorID       *string
	Meta          RequestMeta
}

// AuditService writes generic before/after snapshots for entity mutations.
// Entries are append-only; no update or delete is exposed.
type AuditService struct {
	audit repository.AuditLogRepository
}

// NewAuditService constructs the service.
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{audit: auditRepo}
}

// Log validates and persists one audit entry. Request metadata is bounded
// before the write: the source IP keeps the first address of a forwarded
// chain and at most 45 characters, the user agent at most 255.
func (s *AuditService) Log(ctx context.Context, input AuditInput) (*domain.AuditLogEntry, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.EntityType) == "" {
		details["entity_type"] = "required"
	}
	if strings.TrimSpace(input.EntityID) == "" {
		details["entity_id"] = "required"
	}
	if strings.TrimSpace(string(input.Action)) == "" {
		details["action"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid audit input", details)
	}

	entry := &domain.AuditLogEntry{
		TenantID:      input.TenantID,
		EntityType:    input.EntityType,
		EntityID:      input.EntityID,
		Action:        input.Action,
		PreviousState: input.PreviousState,
		NewState:      input.NewState,
		ActorID:       input.ActorID,
	}
	if ip := NormalizeSourceIP(input.Meta.SourceIP); ip != "" {
		entry.SourceIP = &ip
	}
	if agent := truncate(input.Meta.UserAgent, domain.AuditUserAgentMaxLen); agent != "" {
		entry.UserAgent = &agent
	}

	if err := s.audit.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// ListByEntity returns the audit trail for one entity, most-recent-first.
func (s *AuditService) ListByEntity(ctx context.Context, tenantID, entityType, entityID string, limit, offset int) ([]domain.AuditLogEntry, error) {
	entries, err := s.audit.ListByEntity(ctx, tenantID, entityType, entityID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.AuditLogEntry{}
	}
	return entries, nil
}

// NormalizeSourceIP takes the first address of a comma-separated
// forwarded-for chain and bounds it to the storage column size.
func NormalizeSourceIP(raw string) string {
	first := raw
	if idx := strings.Index(raw, ","); idx >= 0 {
		first = raw[:idx]
	}
	return truncate(strings.TrimSpace(first), domain.AuditSourceIPMaxLen)
}

// truncate bounds value to max bytes without splitting a rune; an invalid
// UTF-8 tail would be rejected by the database and take the enclosing
// transaction down with it.
func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	value = value[:max]
	for len(value) > 0 && !utf8.ValidString(value) {
		value = value[:len(value)-1]
	}
	return value
}
