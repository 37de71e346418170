package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prorab-io/prorab-engine/pkg/apperrors"
	"github.com/prorab-io/prorab-engine/pkg/database"
	"github.com/prorab-io/prorab-engine/pkg/models"
)

// WorkPlanRepository manages work plans and their items.
type WorkPlanRepository interface {
	// Create inserts the plan and all its items atomically.
	Create(ctx context.Context, plan *models.WorkPlan) error
	GetByProject(ctx context.Context, projectID uuid.UUID) (*models.WorkPlan, error)
	// ListItemsByProject returns the project's work plan items in plan order.
	// Empty when the project has no plan.
	ListItemsByProject(ctx context.Context, projectID uuid.UUID) ([]*models.WorkPlanItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.WorkPlanItem, error)
	UpdateItem(ctx context.Context, item *models.WorkPlanItem) error
	// GetPlanProjectID resolves the project a plan belongs to.
	GetPlanProjectID(ctx context.Context, planID uuid.UUID) (uuid.UUID, error)
}

type workPlanRepository struct {
	db *database.DB
}

// NewWorkPlanRepository creates a new work plan repository.
func NewWorkPlanRepository(db *database.DB) WorkPlanRepository {
	return &workPlanRepository{db: db}
}

func (r *workPlanRepository) Create(ctx context.Context, plan *models.WorkPlan) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := database.QuerierFrom(ctx, r.db.Pool)

		if plan.ID == uuid.Nil {
			plan.ID = uuid.New()
		}
		now := time.Now()
		plan.CreatedAt = now
		plan.UpdatedAt = now

		_, err := q.Exec(ctx,
			`INSERT INTO work_plans (id, project_id, start_date, end_date, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			plan.ID, plan.ProjectID, plan.StartDate, plan.EndDate, plan.CreatedAt, plan.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create work plan: %w", err)
		}

		for i, item := range plan.Items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.WorkPlanID = plan.ID
			item.Order = i
			if item.Status == "" {
				item.Status = models.WorkItemStatusNotStarted
			}
			item.CreatedAt = now
			item.UpdatedAt = now

			_, err := q.Exec(ctx,
				`INSERT INTO work_plan_items (id, work_plan_id, name, quantity, unit, start_date, end_date, "order", status, progress, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				item.ID, item.WorkPlanID, item.Name, item.Quantity, item.Unit,
				item.StartDate, item.EndDate, item.Order, item.Status, item.Progress,
				item.CreatedAt, item.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create work plan item: %w", err)
			}
		}

		return nil
	})
}

func (r *workPlanRepository) GetByProject(ctx context.Context, projectID uuid.UUID) (*models.WorkPlan, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	var plan models.WorkPlan
	err := q.QueryRow(ctx,
		`SELECT id, project_id, start_date, end_date, created_at, updated_at
		 FROM work_plans WHERE project_id = $1`, projectID).
		Scan(&plan.ID, &plan.ProjectID, &plan.StartDate, &plan.EndDate, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get work plan: %w", err)
	}

	items, err := r.ListItemsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	plan.Items = items

	return &plan, nil
}

func (r *workPlanRepository) ListItemsByProject(ctx context.Context, projectID uuid.UUID) ([]*models.WorkPlanItem, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	rows, err := q.Query(ctx,
		`SELECT i.id, i.work_plan_id, i.name, i.quantity, i.unit, i.start_date, i.end_date, i."order", i.status, i.progress, i.created_at, i.updated_at
		 FROM work_plan_items i
		 JOIN work_plans p ON p.id = i.work_plan_id
		 WHERE p.project_id = $1
		 ORDER BY i."order"`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work plan items: %w", err)
	}
	defer rows.Close()

	var items []*models.WorkPlanItem
	for rows.Next() {
		item, err := scanWorkPlanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work plan items: %w", err)
	}

	return items, nil
}

func (r *workPlanRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*models.WorkPlanItem, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	row := q.QueryRow(ctx,
		`SELECT id, work_plan_id, name, quantity, unit, start_date, end_date, "order", status, progress, created_at, updated_at
		 FROM work_plan_items WHERE id = $1`, itemID)

	return scanWorkPlanItem(row)
}

func (r *workPlanRepository) UpdateItem(ctx context.Context, item *models.WorkPlanItem) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	item.UpdatedAt = time.Now()
	tag, err := q.Exec(ctx,
		`UPDATE work_plan_items SET status = $2, progress = $3, updated_at = $4 WHERE id = $1`,
		item.ID, item.Status, item.Progress, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update work plan item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *workPlanRepository) GetPlanProjectID(ctx context.Context, planID uuid.UUID) (uuid.UUID, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	var projectID uuid.UUID
	err := q.QueryRow(ctx, `SELECT project_id FROM work_plans WHERE id = $1`, planID).Scan(&projectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, apperrors.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get work plan project: %w", err)
	}
	return projectID, nil
}

func scanWorkPlanItem(row pgx.Row) (*models.WorkPlanItem, error) {
	var item models.WorkPlanItem
	err := row.Scan(
		&item.ID, &item.WorkPlanID, &item.Name, &item.Quantity, &item.Unit,
		&item.StartDate, &item.EndDate, &item.Order, &item.Status, &item.Progress,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan work plan item: %w", err)
	}
	return &item, nil
}
