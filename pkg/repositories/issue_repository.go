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

// IssueRepository manages inspector remarks and violations.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	Get(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	Update(ctx context.Context, issue *models.Issue) error
	// ListOpenByProject returns issues in open or pending_verification status.
	ListOpenByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Issue, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Issue, error)
}

type issueRepository struct {
	db *database.DB
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(db *database.DB) IssueRepository {
	return &issueRepository{db: db}
}

const issueColumns = `id, project_id, task_id, type, author_id, status, description, due_date,
	resolution_comment, resolution_photos, resolved_by_id, resolved_at,
	verified_by_id, verified_at, verification_comment, created_at`

func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	issue.CreatedAt = time.Now()
	if issue.Status == "" {
		issue.Status = models.IssueStatusOpen
	}

	query := `
		INSERT INTO issues (` + issueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := q.Exec(ctx, query,
		issue.ID, issue.ProjectID, issue.TaskID, issue.Type, issue.AuthorID,
		issue.Status, issue.Description, issue.DueDate,
		issue.ResolutionComment, issue.ResolutionPhotos, issue.ResolvedByID, issue.ResolvedAt,
		issue.VerifiedByID, issue.VerifiedAt, issue.VerificationComment, issue.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	return nil
}

func (r *issueRepository) Get(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)
	row := q.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)
	return scanIssue(row)
}

func (r *issueRepository) Update(ctx context.Context, issue *models.Issue) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	query := `
		UPDATE issues
		SET status = $2, resolution_comment = $3, resolution_photos = $4,
		    resolved_by_id = $5, resolved_at = $6,
		    verified_by_id = $7, verified_at = $8, verification_comment = $9
		WHERE id = $1`

	tag, err := q.Exec(ctx, query,
		issue.ID, issue.Status, issue.ResolutionComment, issue.ResolutionPhotos,
		issue.ResolvedByID, issue.ResolvedAt,
		issue.VerifiedByID, issue.VerifiedAt, issue.VerificationComment)
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *issueRepository) ListOpenByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Issue, error) {
	return r.list(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE project_id = $1 AND status IN ($2, $3) ORDER BY created_at DESC`,
		projectID, models.IssueStatusOpen, models.IssueStatusPendingVerification)
}

func (r *issueRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Issue, error) {
	return r.list(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE project_id = $1 ORDER BY created_at DESC`,
		projectID)
}

func (r *issueRepository) list(ctx context.Context, query string, args ...any) ([]*models.Issue, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issues: %w", err)
	}

	return issues, nil
}

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var issue models.Issue
	err := row.Scan(
		&issue.ID, &issue.ProjectID, &issue.TaskID, &issue.Type, &issue.AuthorID,
		&issue.Status, &issue.Description, &issue.DueDate,
		&issue.ResolutionComment, &issue.ResolutionPhotos, &issue.ResolvedByID, &issue.ResolvedAt,
		&issue.VerifiedByID, &issue.VerifiedAt, &issue.VerificationComment, &issue.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}
	return &issue, nil
}
