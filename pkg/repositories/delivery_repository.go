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

// DeliveryRepository manages material deliveries.
type DeliveryRepository interface {
	// Create inserts the delivery and its items atomically.
	Create(ctx context.Context, delivery *models.MaterialDelivery) error
	Get(ctx context.Context, id uuid.UUID) (*models.MaterialDelivery, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.MaterialDelivery, error)
}

type deliveryRepository struct {
	db *database.DB
}

// NewDeliveryRepository creates a new delivery repository.
func NewDeliveryRepository(db *database.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) Create(ctx context.Context, delivery *models.MaterialDelivery) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := database.QuerierFrom(ctx, r.db.Pool)

		if delivery.ID == uuid.Nil {
			delivery.ID = uuid.New()
		}
		if delivery.DeliveryDate.IsZero() {
			delivery.DeliveryDate = time.Now()
		}

		_, err := q.Exec(ctx,
			`INSERT INTO material_deliveries (id, project_id, foreman_id, delivery_date)
			 VALUES ($1, $2, $3, $4)`,
			delivery.ID, delivery.ProjectID, delivery.ForemanID, delivery.DeliveryDate)
		if err != nil {
			return fmt.Errorf("failed to create delivery: %w", err)
		}

		for _, item := range delivery.Items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.DeliveryID = delivery.ID

			_, err := q.Exec(ctx,
				`INSERT INTO material_delivery_items (id, delivery_id, material_id, quantity)
				 VALUES ($1, $2, $3, $4)`,
				item.ID, item.DeliveryID, item.MaterialID, item.Quantity)
			if err != nil {
				return fmt.Errorf("failed to create delivery item: %w", err)
			}
		}

		return nil
	})
}

func (r *deliveryRepository) Get(ctx context.Context, id uuid.UUID) (*models.MaterialDelivery, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	var delivery models.MaterialDelivery
	err := q.QueryRow(ctx,
		`SELECT id, project_id, foreman_id, delivery_date FROM material_deliveries WHERE id = $1`, id).
		Scan(&delivery.ID, &delivery.ProjectID, &delivery.ForemanID, &delivery.DeliveryDate)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	delivery.Items = items

	return &delivery, nil
}

func (r *deliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	// Items go with the delivery via ON DELETE CASCADE.
	tag, err := q.Exec(ctx, `DELETE FROM material_deliveries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *deliveryRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.MaterialDelivery, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	rows, err := q.Query(ctx,
		`SELECT id, project_id, foreman_id, delivery_date
		 FROM material_deliveries WHERE project_id = $1 ORDER BY delivery_date DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.MaterialDelivery
	for rows.Next() {
		var d models.MaterialDelivery
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.ForemanID, &d.DeliveryDate); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deliveries: %w", err)
	}

	return deliveries, nil
}

func (r *deliveryRepository) listItems(ctx context.Context, deliveryID uuid.UUID) ([]*models.MaterialDeliveryItem, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	rows, err := q.Query(ctx,
		`SELECT id, delivery_id, material_id, quantity
		 FROM material_delivery_items WHERE delivery_id = $1`, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery items: %w", err)
	}
	defer rows.Close()

	var items []*models.MaterialDeliveryItem
	for rows.Next() {
		var item models.MaterialDeliveryItem
		if err := rows.Scan(&item.ID, &item.DeliveryID, &item.MaterialID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan delivery item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate delivery items: %w", err)
	}

	return items, nil
}
