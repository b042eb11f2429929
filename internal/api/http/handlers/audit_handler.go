package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-lifecycle/internal/api/dto"
	"github.com/spec-kit/ticket-lifecycle/internal/auth"
	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	"github.com/spec-kit/ticket-lifecycle/internal/service"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

// AuditHandler exposes the generic audit log endpoints.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: auditService}
}

// CreateAuditLog POST /audit-logs.
func (h *AuditHandler) CreateAuditLog(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateAuditLogRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	actorID := principal.ActorID
	entry, err := h.audit.Log(c.UserContext(), service.AuditInput{
		TenantID:      principal.TenantID,
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		Action:        domain.AuditAction(req.Action),
		PreviousState: req.PreviousState,
		NewState:      req.NewState,
		ActorID:       &actorID,
		Meta:          requestMeta(c),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AuditFromDomain(entry)})
}

// ListAuditLogs GET /audit-logs.
func (h *AuditHandler) ListAuditLogs(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")
	if entityType == "" || entityID == "" {
		return apperrors.NewValidationError("entity_type and entity_id required", nil)
	}

	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 50)
	entries, err := h.audit.ListByEntity(c.UserContext(), principal.TenantID, entityType, entityID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}

	items := make([]dto.AuditLogResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.AuditFromDomain(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
