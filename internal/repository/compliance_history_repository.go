package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slaworks/sla-service/internal/domain"
)

// ComplianceHistoryRepository stores observed SLA status changes.
type ComplianceHistoryRepository interface {
	Create(ctx context.Context, entry *domain.ComplianceHistory) error
	ListBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID string) ([]domain.ComplianceHistory, error)
}

type complianceHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewComplianceHistoryRepository builds repository.
func NewComplianceHistoryRepository(pool *pgxpool.Pool) ComplianceHistoryRepository {
	return &complianceHistoryRepository{pool: pool}
}

func (r *complianceHistoryRepository) Create(ctx context.Context, entry *domain.ComplianceHistory) error {
	const query = `
        INSERT INTO compliance_history (subject_type, subject_id, window_kind, old_status, new_status, percentage)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.SubjectType,
		entry.SubjectID,
		entry.Window,
		entry.OldStatus,
		entry.NewStatus,
		entry.Percentage,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *complianceHistoryRepository) ListBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID string) ([]domain.ComplianceHistory, error) {
	if !isUUID(subjectID) {
		return nil, nil
	}
	const query = `
        SELECT id, subject_type, subject_id, window_kind, old_status, new_status, percentage, created_at
        FROM compliance_history WHERE subject_type=$1 AND subject_id=$2 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplianceHistory
	for rows.Next() {
		var entry domain.ComplianceHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.SubjectType,
			&entry.SubjectID,
			&entry.Window,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Percentage,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
