package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prorab-io/prorab-engine/pkg/apperrors"
	"github.com/prorab-io/prorab-engine/pkg/database"
	"github.com/prorab-io/prorab-engine/pkg/models"
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// GetForUpdate loads the project under a row lock. Must run inside an
	// ambient transaction; the lock serializes concurrent risk recomputation
	// for the same project.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// UpdateRisk persists the risk fields written by the aggregator.
	UpdateRisk(ctx context.Context, id uuid.UUID, score int, level models.RiskLevel, breakdown []models.RiskFactor) error
	// ListHighRisk returns projects whose level is HIGH or CRITICAL.
	ListHighRisk(ctx context.Context) ([]*models.Project, error)
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, name, address, latitude, longitude, status, created_at, risk_score, risk_level, risk_breakdown`

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = time.Now()
	if project.Status == "" {
		project.Status = models.ProjectStatusPending
	}
	if project.RiskLevel == "" {
		project.RiskLevel = models.RiskLevelLow
	}

	breakdown, err := marshalBreakdown(project.RiskBreakdown)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (id, name, address, latitude, longitude, status, created_at, risk_score, risk_level, risk_breakdown)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = q.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Address,
		project.Latitude,
		project.Longitude,
		project.Status,
		project.CreatedAt,
		project.RiskScore,
		project.RiskLevel,
		breakdown,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)
	row := q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (r *projectRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)
	row := q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id)
	return scanProject(row)
}

func (r *projectRepository) List(ctx context.Context) ([]*models.Project, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)
	rows, err := q.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	q := database.QuerierFrom(ctx, r.db.Pool)
	tag, err := q.Exec(ctx, `UPDATE projects SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *projectRepository) UpdateRisk(ctx context.Context, id uuid.UUID, score int, level models.RiskLevel, breakdown []models.RiskFactor) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	data, err := marshalBreakdown(breakdown)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx,
		`UPDATE projects SET risk_score = $2, risk_level = $3, risk_breakdown = $4 WHERE id = $1`,
		id, score, level, data)
	if err != nil {
		return fmt.Errorf("failed to update project risk: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *projectRepository) ListHighRisk(ctx context.Context) ([]*models.Project, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)
	rows, err := q.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE risk_level = $1 OR risk_level = $2 ORDER BY risk_score DESC`,
		models.RiskLevelHigh, models.RiskLevelCritical)
	if err != nil {
		return nil, fmt.Errorf("failed to list high-risk projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func marshalBreakdown(breakdown []models.RiskFactor) ([]byte, error) {
	if breakdown == nil {
		breakdown = []models.RiskFactor{}
	}
	data, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal risk breakdown: %w", err)
	}
	return data, nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project
	var breakdown []byte

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Address,
		&project.Latitude,
		&project.Longitude,
		&project.Status,
		&project.CreatedAt,
		&project.RiskScore,
		&project.RiskLevel,
		&breakdown,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &project.RiskBreakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal risk breakdown: %w", err)
		}
	}

	return &project, nil
}

func scanProjects(rows pgx.Rows) ([]*models.Project, error) {
	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}
