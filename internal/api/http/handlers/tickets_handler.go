package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/slaworks/sla-service/internal/api/dto"
	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
	"github.com/slaworks/sla-service/internal/repository"
	"github.com/slaworks/sla-service/internal/service"
	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

// TicketsHandler serves ticket SLA endpoints.
type TicketsHandler struct {
	service ComplianceReader
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(complianceService ComplianceReader) *TicketsHandler {
	return &TicketsHandler{service: complianceService}
}

// GetSLA GET /api/v1/tickets/:id/sla.
func (h *TicketsHandler) GetSLA(c *fiber.Ctx) error {
	view, err := h.service.TicketCompliance(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSLA(view)})
}

// Metrics GET /api/v1/compliance/tickets.
func (h *TicketsHandler) Metrics(c *fiber.Ctx) error {
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	metrics, err := h.service.TicketMetrics(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketMetricsResponse{
		EvaluatedAt: metrics.EvaluatedAt,
		Response:    metrics.Response,
		Resolution:  metrics.Resolution,
	}})
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, error) {
	var filter repository.TicketFilter
	var err error
	if filter.CreatedFrom, err = parseTime("created_from", c.Query("created_from")); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = parseTime("created_to", c.Query("created_to")); err != nil {
		return filter, err
	}
	for _, part := range splitCSV(c.Query("tier")) {
		tier, err := compliance.ParseTier(part)
		if err != nil {
			return filter, err
		}
		filter.Tiers = append(filter.Tiers, tier)
	}
	for _, part := range splitCSV(c.Query("priority")) {
		priority, err := compliance.ParsePriority(part)
		if err != nil {
			return filter, err
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	for _, part := range splitCSV(c.Query("status")) {
		status := domain.TicketStatus(part)
		switch status {
		case domain.TicketStatusPending, domain.TicketStatusInProgress, domain.TicketStatusResolved,
			domain.TicketStatusClosed, domain.TicketStatusCancelled:
			filter.Statuses = append(filter.Statuses, status)
		default:
			return filter, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": part})
		}
	}
	return filter, nil
}

func ticketSLA(view *service.TicketCompliance) dto.TicketSLAResponse {
	ticket := view.Ticket
	return dto.TicketSLAResponse{
		ID:              ticket.ID,
		ExternalKey:     ticket.ExternalKey,
		Title:           ticket.Title,
		Tier:            ticket.Tier,
		Priority:        ticket.Priority,
		Status:          ticket.Status,
		CreatedAt:       ticket.CreatedAt,
		FirstResponseAt: ticket.FirstResponseAt,
		ResolvedAt:      ticket.ResolvedAt,
		ClosedAt:        ticket.ClosedAt,
		SLABreachedAt:   ticket.SLABreachedAt,
		Response:        dto.NewWindowStatus(view.Response),
		Resolution:      dto.NewWindowStatus(view.Resolution),
		Governing:       view.Governing,
		Escalate:        view.Escalate,
		EvaluatedAt:     view.EvaluatedAt,
	}
}
