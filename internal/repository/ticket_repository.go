package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
)

// TicketFilter narrows ticket listings. A non-positive Limit returns every match.
type TicketFilter struct {
	Tiers       []compliance.Tier
	Priorities  []compliance.Priority
	Statuses    []domain.TicketStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateSLAState(ctx context.Context, id string, status compliance.Status, breachedAt *time.Time) error
}

type ticketRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool, logger *zap.Logger) TicketRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ticketRepository{pool: pool, logger: logger}
}

const ticketColumns = `id, external_key, title, tier, priority, status, created_at, updated_at,
               first_response_at, resolved_at, closed_at, sla_status, sla_breached_at`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if !isUUID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := r.scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Tiers) > 0 {
		placeholders := make([]string, len(filter.Tiers))
		for i, tier := range filter.Tiers {
			args = append(args, tier)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("tier IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at ASC%s`,
		ticketColumns, strings.Join(clauses, " AND "), pageClause(filter.Limit, filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanTickets(rows)
}

func (r *ticketRepository) UpdateSLAState(ctx context.Context, id string, status compliance.Status, breachedAt *time.Time) error {
	const query = `
        UPDATE tickets SET sla_status=$1, sla_breached_at=COALESCE(sla_breached_at, $2), updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, breachedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		var tier, priority string
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ExternalKey,
			&ticket.Title,
			&tier,
			&priority,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.FirstResponseAt,
			&ticket.ResolvedAt,
			&ticket.ClosedAt,
			&ticket.SLAStatus,
			&ticket.SLABreachedAt,
		); err != nil {
			return nil, err
		}
		applyTicketLabels(&ticket, tier, priority, r.logger)
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// applyTicketLabels normalizes stored tier and priority labels. Unknown labels
// are kept verbatim, which leaves the ticket untracked, and logged. Empty labels
// mean the ticket has no tier or priority yet.
func applyTicketLabels(ticket *domain.Ticket, tier, priority string, logger *zap.Logger) {
	ticket.Tier = compliance.Tier(tier)
	if tier != "" {
		if parsed, err := compliance.ParseTier(tier); err == nil {
			ticket.Tier = parsed
		} else {
			logger.Warn("unknown ticket tier", zap.String("ticket_id", ticket.ID), zap.String("tier", tier))
		}
	}
	ticket.Priority = compliance.Priority(priority)
	if priority != "" {
		if parsed, err := compliance.ParsePriority(priority); err == nil {
			ticket.Priority = parsed
		} else {
			logger.Warn("unknown ticket priority", zap.String("ticket_id", ticket.ID), zap.String("priority", priority))
		}
	}
}

// pageClause renders LIMIT/OFFSET; listings feeding aggregates pass no limit.
func pageClause(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

// isUUID reports whether id can match a UUID primary key.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
