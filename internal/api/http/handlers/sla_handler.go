package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/slaworks/sla-service/internal/api/dto"
	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

// SLAHandler serves engine configuration, ad hoc classification, snapshots and history.
type SLAHandler struct {
	service ComplianceReader
}

// NewSLAHandler constructs handler.
func NewSLAHandler(complianceService ComplianceReader) *SLAHandler {
	return &SLAHandler{service: complianceService}
}

// Matrix GET /api/v1/sla/matrix.
func (h *SLAHandler) Matrix(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewMatrixResponse(h.service.Engine())})
}

// Classify POST /api/v1/sla/classify.
func (h *SLAHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Start.IsZero() {
		return apperrors.NewValidationError("start required", nil)
	}
	engine := h.service.Engine()
	deadline, err := resolveDeadline(engine, req)
	if err != nil {
		return err
	}

	now := h.service.Now()
	if req.Now != nil {
		now = *req.Now
	}
	resp := dto.ClassifyResponse{Start: req.Start, EvaluatedAt: now}
	if deadline != nil {
		resp.Deadline = deadline
		resp.Window = dto.NewWindowStatus(engine.ClassifyWindow(compliance.Window{
			Start:       req.Start,
			Deadline:    *deadline,
			CompletedAt: req.CompletedAt,
			Completed:   req.Completed,
		}, now))
	} else {
		resp.Window = dto.NewWindowStatus(nil)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// resolveDeadline returns nil when the requested matrix cell is not tracked.
func resolveDeadline(engine *compliance.Engine, req dto.ClassifyRequest) (*time.Time, error) {
	if req.Deadline != nil {
		return req.Deadline, nil
	}
	if req.Tier == "" || req.Priority == "" {
		return nil, apperrors.NewValidationError("deadline or tier and priority required", nil)
	}
	tier, err := compliance.ParseTier(req.Tier)
	if err != nil {
		return nil, err
	}
	priority, err := compliance.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	kind := compliance.WindowResolution
	if req.Kind != "" {
		if kind, err = compliance.ParseWindowKind(req.Kind); err != nil {
			return nil, err
		}
	}
	length, ok := engine.Matrix().Duration(tier, priority, kind)
	if !ok {
		return nil, nil
	}
	deadline := req.Start.Add(length)
	return &deadline, nil
}

// Snapshot GET /api/v1/compliance/snapshot.
func (h *SLAHandler) Snapshot(c *fiber.Ctx) error {
	snapshot, err := h.service.Snapshot(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

// History GET /api/v1/compliance/history/:subject/:id.
func (h *SLAHandler) History(c *fiber.Ctx) error {
	subject := domain.SubjectType(c.Params("subject"))
	switch subject {
	case domain.SubjectTicket, domain.SubjectTask, domain.SubjectInstance:
	default:
		return apperrors.NewValidationError("unknown subject type", map[string]any{"subject": c.Params("subject")})
	}
	entries, err := h.service.History(c.UserContext(), subject, c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.HistoryEntryResponse{
			ID:         entry.ID,
			Window:     entry.Window,
			OldStatus:  entry.OldStatus,
			NewStatus:  entry.NewStatus,
			Percentage: entry.Percentage,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}
