package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
)

// TaskFilter narrows task listings. A non-positive Limit returns every match.
type TaskFilter struct {
	InstanceID *string
	Assignee   *string
	Statuses   []domain.TaskStatus
	Limit      int
	Offset     int
}

// TaskRepository encapsulates BPM task persistence.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	UpdateSLAState(ctx context.Context, id string, status compliance.Status, breachedAt *time.Time) error
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, instance_id, name, assignee, status, started_at, due_at, completed_at, sla_status, sla_breached_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if !isUUID(id) {
		return nil, pgx.ErrNoRows
	}
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM bpm_tasks WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tasks[0], nil
}

func (r *taskRepository) ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.InstanceID != nil {
		args = append(args, *filter.InstanceID)
		clauses = append(clauses, fmt.Sprintf("instance_id=$%d", len(args)))
	}
	if filter.Assignee != nil {
		args = append(args, *filter.Assignee)
		clauses = append(clauses, fmt.Sprintf("assignee=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM bpm_tasks WHERE %s ORDER BY started_at ASC%s`,
		taskColumns, strings.Join(clauses, " AND "), pageClause(filter.Limit, filter.Offset))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *taskRepository) UpdateSLAState(ctx context.Context, id string, status compliance.Status, breachedAt *time.Time) error {
	const query = `
        UPDATE bpm_tasks SET sla_status=$1, sla_breached_at=COALESCE(sla_breached_at, $2)
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

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.InstanceID,
			&task.Name,
			&task.Assignee,
			&task.Status,
			&task.StartedAt,
			&task.DueAt,
			&task.CompletedAt,
			&task.SLAStatus,
			&task.SLABreachedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
