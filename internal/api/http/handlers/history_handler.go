package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-lifecycle/internal/api/dto"
	"github.com/spec-kit/ticket-lifecycle/internal/auth"
	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	"github.com/spec-kit/ticket-lifecycle/internal/service"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

// HistoryHandler exposes the status history endpoints.
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: historyService}
}

// CreateStatusHistory POST /tickets/:id/history.
func (h *HistoryHandler) CreateStatusHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateStatusHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}

	kind := domain.TransitionKindStatus
	if req.IsAssignmentChange {
		kind = domain.TransitionKindAssignment
	}
	entry, err := h.history.Record(c.UserContext(), service.RecordInput{
		TenantID:         principal.TenantID,
		TicketID:         ticketID,
		Kind:             kind,
		PreviousStatus:   req.PreviousStatus,
		NewStatus:        req.NewStatus,
		PreviousAssignee: req.PreviousAssignee,
		NewAssignee:      req.NewAssignee,
		ActorID:          principal.ActorID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.HistoryFromDomain(entry)})
}

// GetStatusHistory GET /tickets/:id/history.
func (h *HistoryHandler) GetStatusHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 50)
	entries, err := h.history.History(c.UserContext(), principal.TenantID, ticketID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}

	items := make([]dto.StatusHistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.HistoryFromDomain(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
