package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
)

func TestGetByID_MalformedIDIsMissing(t *testing.T) {
	ctx := context.Background()

	_, err := NewTicketRepository(nil, nil).GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = NewTaskRepository(nil).GetByID(ctx, "42")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = NewInstanceRepository(nil).GetByID(ctx, "")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	entries, err := NewComplianceHistoryRepository(nil).ListBySubject(ctx, "ticket", "t-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPageClause(t *testing.T) {
	assert.Equal(t, "", pageClause(0, 10))
	assert.Equal(t, " LIMIT 20 OFFSET 0", pageClause(20, -5))
	assert.Equal(t, " LIMIT 20 OFFSET 40", pageClause(20, 40))
}

func TestApplyTicketLabels(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	ticket := domain.Ticket{ID: "t-1"}
	applyTicketLabels(&ticket, " Standard", "HIGH", logger)
	assert.Equal(t, compliance.TierStandard, ticket.Tier)
	assert.Equal(t, compliance.PriorityHigh, ticket.Priority)
	assert.Zero(t, logs.Len())

	ticket = domain.Ticket{ID: "t-2"}
	applyTicketLabels(&ticket, "gold", "p1", logger)
	assert.Equal(t, compliance.Tier("gold"), ticket.Tier)
	assert.Equal(t, compliance.Priority("p1"), ticket.Priority)
	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "unknown ticket tier", entry.Message)
	assert.Equal(t, "gold", entry.ContextMap()["tier"])
	assert.Equal(t, "t-2", entry.ContextMap()["ticket_id"])

	ticket = domain.Ticket{ID: "t-3"}
	applyTicketLabels(&ticket, "", "", logger)
	assert.Empty(t, ticket.Tier)
	assert.Equal(t, 2, logs.Len())
}
