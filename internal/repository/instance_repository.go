package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
)

// InstanceRepository encapsulates BPM process instance persistence.
type InstanceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ProcessInstance, error)
	List(ctx context.Context, statuses []domain.InstanceStatus) ([]domain.ProcessInstance, error)
	UpdateSLAState(ctx context.Context, id string, status compliance.Status, breachedAt *time.Time) error
}

type instanceRepository struct {
	pool *pgxpool.Pool
}

// NewInstanceRepository instantiates repository.
func NewInstanceRepository(pool *pgxpool.Pool) InstanceRepository {
	return &instanceRepository{pool: pool}
}

const instanceColumns = `id, process_key, status, started_at, due_at, completed_at, sla_status, sla_breached_at`

func (r *instanceRepository) GetByID(ctx context.Context, id string) (*domain.ProcessInstance, error) {
	if !isUUID(id) {
		return nil, pgx.ErrNoRows
	}
	rows, err := r.pool.Query(ctx, `SELECT `+instanceColumns+` FROM bpm_instances WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	instances, err := scanInstances(rows)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &instances[0], nil
}

// List returns instances in the given statuses, or all instances when none are given.
func (r *instanceRepository) List(ctx context.Context, statuses []domain.InstanceStatus) ([]domain.ProcessInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM bpm_instances`
	args := []any{}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, status := range statuses {
			values[i] = string(status)
		}
		args = append(args, values)
		query += ` WHERE status = ANY($1)`
	}
	query += ` ORDER BY started_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstances(rows)
}

func (r *instanceRepository) UpdateSLAState(ctx context.Context, id string, status compliance.Status, breachedAt *time.Time) error {
	const query = `
        UPDATE bpm_instances SET sla_status=$1, sla_breached_at=COALESCE(sla_breached_at, $2)
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

func scanInstances(rows pgx.Rows) ([]domain.ProcessInstance, error) {
	var result []domain.ProcessInstance
	for rows.Next() {
		var instance domain.ProcessInstance
		if err := rows.Scan(
			&instance.ID,
			&instance.ProcessKey,
			&instance.Status,
			&instance.StartedAt,
			&instance.DueAt,
			&instance.CompletedAt,
			&instance.SLAStatus,
			&instance.SLABreachedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, instance)
	}
	return result, rows.Err()
}
