package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/ticket-lifecycle/internal/api/dto"
	"github.com/spec-kit/ticket-lifecycle/internal/auth"
	"github.com/spec-kit/ticket-lifecycle/internal/service"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycleService *service.LifecycleService) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycleService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RequesterID == "" {
		req.RequesterID = principal.ActorID
	}
	if req.Title == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	ticket, err := h.lifecycle.CreateTicket(c.UserContext(), principal.TenantID, service.TicketCreateInput{
		RequesterID:   req.RequesterID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		GroupID:       req.GroupID,
		AssigneeID:    req.AssigneeID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Tags:          req.Tags,
	}, requestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.lifecycle.GetTicket(c.UserContext(), principal.TenantID, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Transition POST /tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(string(req.NewStatus)) == "" {
		return apperrors.NewValidationError("new_status required", nil)
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}

	ticket, entry, err := h.lifecycle.Transition(c.UserContext(), principal.TenantID, ticketID, req.NewStatus, principal.ActorID, req.Comment, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket":  dto.TicketFromDomain(ticket),
		"history": dto.HistoryFromDomain(entry),
	}})
}

// Resolve POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.lifecycle.Resolve(c.UserContext(), principal.TenantID, ticketID, service.ResolveInput{
		ResolutionNotes: req.ResolutionNotes,
		ResolvedBy:      principal.ActorID,
		Tags:            req.Tags,
	}, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Reassign POST /tickets/:id/assignee.
func (h *TicketsHandler) Reassign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	entry, err := h.lifecycle.Reassign(c.UserContext(), principal.TenantID, ticketID, req.AssigneeID, principal.ActorID, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.HistoryFromDomain(entry)})
}

// AssignGroup POST /tickets/:id/group.
func (h *TicketsHandler) AssignGroup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.lifecycle.AssignGroup(c.UserContext(), principal.TenantID, ticketID, req.GroupID, principal.ActorID, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// ticketIDParam reads the :id path segment and rejects anything that is not
// a uuid. Ticket ids are uuid columns; letting a malformed id through would
// fail parameter encoding in the repository and surface as a server error
// instead of a not-found.
func ticketIDParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return id, nil
}

// requestMeta captures request metadata for the audit trail. The forwarded
// chain is preferred over the socket address when a proxy sits in front.
func requestMeta(c *fiber.Ctx) service.RequestMeta {
	sourceIP := c.Get("X-Forwarded-For")
	if sourceIP == "" {
		sourceIP = c.IP()
	}
	return service.RequestMeta{
		SourceIP:  sourceIP,
		UserAgent: c.Get("User-Agent"),
	}
}
