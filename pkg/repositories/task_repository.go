package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prorab-io/prorab-engine/pkg/apperrors"
	"github.com/prorab-io/prorab-engine/pkg/database"
	"github.com/prorab-io/prorab-engine/pkg/models"
)

// TaskRepository manages work-plan-backed tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)
}

type taskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *database.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, project_id, work_plan_item_id, name, start_date, end_date, status,
	completed_by_id, verified_by_id, completed_at, completion_comment, completion_photos, geolocation, actual_quantity`

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := q.Exec(ctx, query,
		task.ID, task.ProjectID, task.WorkPlanItemID, task.Name, task.StartDate, task.EndDate, task.Status,
		task.CompletedByID, task.VerifiedByID, task.CompletedAt, task.CompletionComment,
		task.CompletionPhotos, task.Geolocation, task.ActualQuantity)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

func (r *taskRepository) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)
	row := q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	query := `
		UPDATE tasks
		SET status = $2, completed_by_id = $3, verified_by_id = $4, completed_at = $5,
		    completion_comment = $6, completion_photos = $7, geolocation = $8, actual_quantity = $9
		WHERE id = $1`

	tag, err := q.Exec(ctx, query,
		task.ID, task.Status, task.CompletedByID, task.VerifiedByID, task.CompletedAt,
		task.CompletionComment, task.CompletionPhotos, task.Geolocation, task.ActualQuantity)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	rows, err := q.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY start_date`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID, &task.ProjectID, &task.WorkPlanItemID, &task.Name, &task.StartDate, &task.EndDate, &task.Status,
		&task.CompletedByID, &task.VerifiedByID, &task.CompletedAt, &task.CompletionComment,
		&task.CompletionPhotos, &task.Geolocation, &task.ActualQuantity,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return &task, nil
}
