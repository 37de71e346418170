package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prorab-io/prorab-engine/pkg/database"
	"github.com/prorab-io/prorab-engine/pkg/models"
)

// MaterialRepository manages the material catalog.
type MaterialRepository interface {
	Create(ctx context.Context, material *models.Material) error
	List(ctx context.Context) ([]*models.Material, error)
}

type materialRepository struct {
	db *database.DB
}

// NewMaterialRepository creates a new material repository.
func NewMaterialRepository(db *database.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, material *models.Material) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}

	_, err := q.Exec(ctx,
		`INSERT INTO materials (id, name, unit) VALUES ($1, $2, $3)`,
		material.ID, material.Name, material.Unit)
	if err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

func (r *materialRepository) List(ctx context.Context) ([]*models.Material, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	rows, err := q.Query(ctx, `SELECT id, name, unit FROM materials ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	var materials []*models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate materials: %w", err)
	}

	return materials, nil
}
