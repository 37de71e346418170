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

// ChecklistRepository manages checklist templates and their completions.
type ChecklistRepository interface {
	// Create inserts the template and its items atomically.
	Create(ctx context.Context, checklist *models.Checklist) error
	Get(ctx context.Context, id uuid.UUID) (*models.Checklist, error)
	// GetDailyByProject returns the project's daily checklist template, or
	// apperrors.ErrNotFound when none is defined.
	GetDailyByProject(ctx context.Context, projectID uuid.UUID) (*models.Checklist, error)
	CreateCompletion(ctx context.Context, completion *models.ChecklistCompletion) error
	GetCompletion(ctx context.Context, id uuid.UUID) (*models.ChecklistCompletion, error)
	UpdateCompletion(ctx context.Context, completion *models.ChecklistCompletion) error
	// ListCompletionDates returns completion dates recorded for a checklist
	// template within a project, regardless of review status.
	ListCompletionDates(ctx context.Context, projectID, checklistID uuid.UUID) ([]time.Time, error)
}

type checklistRepository struct {
	db *database.DB
}

// NewChecklistRepository creates a new checklist repository.
func NewChecklistRepository(db *database.DB) ChecklistRepository {
	return &checklistRepository{db: db}
}

func (r *checklistRepository) Create(ctx context.Context, checklist *models.Checklist) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := database.QuerierFrom(ctx, r.db.Pool)

		if checklist.ID == uuid.Nil {
			checklist.ID = uuid.New()
		}
		checklist.CreatedAt = time.Now()

		_, err := q.Exec(ctx,
			`INSERT INTO checklists (id, project_id, name, type, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			checklist.ID, checklist.ProjectID, checklist.Name, checklist.Type, checklist.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create checklist: %w", err)
		}

		for i, item := range checklist.Items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.ChecklistID = checklist.ID
			item.Order = i

			_, err := q.Exec(ctx,
				`INSERT INTO checklist_items (id, checklist_id, text, "order")
				 VALUES ($1, $2, $3, $4)`,
				item.ID, item.ChecklistID, item.Text, item.Order)
			if err != nil {
				return fmt.Errorf("failed to create checklist item: %w", err)
			}
		}

		return nil
	})
}

func (r *checklistRepository) Get(ctx context.Context, id uuid.UUID) (*models.Checklist, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)
	row := q.QueryRow(ctx,
		`SELECT id, project_id, name, type, created_at FROM checklists WHERE id = $1`, id)
	return scanChecklist(row)
}

func (r *checklistRepository) GetDailyByProject(ctx context.Context, projectID uuid.UUID) (*models.Checklist, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)
	row := q.QueryRow(ctx,
		`SELECT id, project_id, name, type, created_at
		 FROM checklists WHERE project_id = $1 AND type = $2
		 ORDER BY created_at LIMIT 1`,
		projectID, models.ChecklistTypeDaily)
	return scanChecklist(row)
}

func (r *checklistRepository) CreateCompletion(ctx context.Context, completion *models.ChecklistCompletion) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	if completion.ID == uuid.Nil {
		completion.ID = uuid.New()
	}
	completion.CreatedAt = time.Now()
	if completion.Status == "" {
		completion.Status = models.CompletionStatusSubmitted
	}
	if completion.CompletionDate.IsZero() {
		completion.CompletionDate = completion.CreatedAt
	}

	query := `
		INSERT INTO checklist_completions (id, checklist_id, project_id, submitted_by_id, status, completion_date, reviewed_by_id, reviewed_at, review_comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := q.Exec(ctx, query,
		completion.ID, completion.ChecklistID, completion.ProjectID, completion.SubmittedByID,
		completion.Status, completion.CompletionDate,
		completion.ReviewedByID, completion.ReviewedAt, completion.ReviewComment, completion.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create checklist completion: %w", err)
	}

	return nil
}

func (r *checklistRepository) GetCompletion(ctx context.Context, id uuid.UUID) (*models.ChecklistCompletion, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	var c models.ChecklistCompletion
	err := q.QueryRow(ctx,
		`SELECT id, checklist_id, project_id, submitted_by_id, status, completion_date, reviewed_by_id, reviewed_at, review_comment, created_at
		 FROM checklist_completions WHERE id = $1`, id).
		Scan(&c.ID, &c.ChecklistID, &c.ProjectID, &c.SubmittedByID, &c.Status, &c.CompletionDate,
			&c.ReviewedByID, &c.ReviewedAt, &c.ReviewComment, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get checklist completion: %w", err)
	}

	return &c, nil
}

func (r *checklistRepository) UpdateCompletion(ctx context.Context, completion *models.ChecklistCompletion) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	tag, err := q.Exec(ctx,
		`UPDATE checklist_completions
		 SET status = $2, reviewed_by_id = $3, reviewed_at = $4, review_comment = $5
		 WHERE id = $1`,
		completion.ID, completion.Status, completion.ReviewedByID, completion.ReviewedAt, completion.ReviewComment)
	if err != nil {
		return fmt.Errorf("failed to update checklist completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *checklistRepository) ListCompletionDates(ctx context.Context, projectID, checklistID uuid.UUID) ([]time.Time, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	rows, err := q.Query(ctx,
		`SELECT completion_date FROM checklist_completions
		 WHERE project_id = $1 AND checklist_id = $2`,
		projectID, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completion dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan completion date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completion dates: %w", err)
	}

	return dates, nil
}

func scanChecklist(row pgx.Row) (*models.Checklist, error) {
	var checklist models.Checklist
	err := row.Scan(&checklist.ID, &checklist.ProjectID, &checklist.Name, &checklist.Type, &checklist.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan checklist: %w", err)
	}
	return &checklist, nil
}
