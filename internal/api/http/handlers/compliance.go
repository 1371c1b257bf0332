package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
	"github.com/slaworks/sla-service/internal/repository"
	"github.com/slaworks/sla-service/internal/service"
	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

// ComplianceReader is the read side of the compliance service used by handlers.
type ComplianceReader interface {
	Engine() *compliance.Engine
	Now() time.Time
	TicketCompliance(ctx context.Context, ticketID string) (*service.TicketCompliance, error)
	TaskCompliance(ctx context.Context, taskID string) (*service.WorkItemCompliance, error)
	InstanceCompliance(ctx context.Context, instanceID string) (*service.WorkItemCompliance, error)
	TicketMetrics(ctx context.Context, filter repository.TicketFilter) (*service.TicketMetrics, error)
	TaskMetrics(ctx context.Context, filter repository.TaskFilter) (*service.WorkMetrics, error)
	InstanceMetrics(ctx context.Context, statuses []domain.InstanceStatus) (*service.WorkMetrics, error)
	Snapshot(ctx context.Context) (*domain.ComplianceSnapshot, error)
	History(ctx context.Context, subject domain.SubjectType, id string) ([]domain.ComplianceHistory, error)
}

func parseTime(field, val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid timestamp, expected RFC3339", map[string]any{field: val})
	}
	return &t, nil
}

func splitCSV(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
