package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-lifecycle/internal/api/dto"
	"github.com/spec-kit/ticket-lifecycle/internal/auth"
	"github.com/spec-kit/ticket-lifecycle/internal/service"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

// ReportsHandler exposes resolution analysis.
type ReportsHandler struct {
	lifecycle *service.LifecycleService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(lifecycleService *service.LifecycleService) *ReportsHandler {
	return &ReportsHandler{lifecycle: lifecycleService}
}

// ResolutionReport GET /reports/resolution. Defaults to the last 30 days.
func (h *ReportsHandler) ResolutionReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if parsed := parseTime(c.Query("from")); parsed != nil {
		from = *parsed
	}
	if parsed := parseTime(c.Query("to")); parsed != nil {
		to = *parsed
	}
	if !from.Before(to) {
		return apperrors.NewValidationError("from must precede to", nil)
	}

	stats, err := h.lifecycle.ResolutionReport(c.UserContext(), principal.TenantID, from, to)
	if err != nil {
		return err
	}

	items := make([]dto.ResolutionStatResponse, 0, len(stats))
	for _, stat := range stats {
		items = append(items, dto.ResolutionStatResponse{
			GroupID:              stat.GroupID,
			ResolvedCount:        stat.ResolvedCount,
			BreachedCount:        stat.BreachedCount,
			AvgResolutionMinutes: stat.AvgResolutionMinutes,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
