package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/slaworks/sla-service/internal/api/dto"
	"github.com/slaworks/sla-service/internal/domain"
	"github.com/slaworks/sla-service/internal/repository"
	"github.com/slaworks/sla-service/internal/service"
	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

// WorkItemsHandler serves BPM task and process instance deadline endpoints.
type WorkItemsHandler struct {
	service ComplianceReader
}

// NewWorkItemsHandler constructs handler.
func NewWorkItemsHandler(complianceService ComplianceReader) *WorkItemsHandler {
	return &WorkItemsHandler{service: complianceService}
}

// TaskDeadline GET /api/v1/tasks/:id/deadline.
func (h *WorkItemsHandler) TaskDeadline(c *fiber.Ctx) error {
	view, err := h.service.TaskCompliance(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workItemDeadline(view)})
}

// InstanceDeadline GET /api/v1/instances/:id/deadline.
func (h *WorkItemsHandler) InstanceDeadline(c *fiber.Ctx) error {
	view, err := h.service.InstanceCompliance(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workItemDeadline(view)})
}

// TaskMetrics GET /api/v1/compliance/tasks.
func (h *WorkItemsHandler) TaskMetrics(c *fiber.Ctx) error {
	filter := repository.TaskFilter{}
	if instanceID := c.Query("instance_id"); instanceID != "" {
		filter.InstanceID = &instanceID
	}
	if assignee := c.Query("assignee"); assignee != "" {
		filter.Assignee = &assignee
	}
	for _, part := range splitCSV(c.Query("status")) {
		status := domain.TaskStatus(part)
		switch status {
		case domain.TaskStatusPending, domain.TaskStatusInProgress, domain.TaskStatusCompleted, domain.TaskStatusCancelled:
			filter.Statuses = append(filter.Statuses, status)
		default:
			return apperrors.NewValidationError("unknown task status", map[string]any{"status": part})
		}
	}
	metrics, err := h.service.TaskMetrics(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workMetrics(metrics)})
}

// InstanceMetrics GET /api/v1/compliance/instances.
func (h *WorkItemsHandler) InstanceMetrics(c *fiber.Ctx) error {
	var statuses []domain.InstanceStatus
	for _, part := range splitCSV(c.Query("status")) {
		status := domain.InstanceStatus(part)
		switch status {
		case domain.InstanceStatusRunning, domain.InstanceStatusCompleted, domain.InstanceStatusTerminated:
			statuses = append(statuses, status)
		default:
			return apperrors.NewValidationError("unknown instance status", map[string]any{"status": part})
		}
	}
	metrics, err := h.service.InstanceMetrics(c.UserContext(), statuses)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workMetrics(metrics)})
}

func workItemDeadline(view *service.WorkItemCompliance) dto.WorkItemDeadlineResponse {
	return dto.WorkItemDeadlineResponse{
		SubjectType: view.SubjectType,
		SubjectID:   view.SubjectID,
		Deadline:    dto.NewWindowStatus(view.Deadline),
		Escalate:    view.Escalate,
		EvaluatedAt: view.EvaluatedAt,
	}
}

func workMetrics(metrics *service.WorkMetrics) dto.WorkMetricsResponse {
	return dto.WorkMetricsResponse{EvaluatedAt: metrics.EvaluatedAt, Deadline: metrics.Deadline}
}
