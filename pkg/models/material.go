package models

import (
	"time"

	"github.com/google/uuid"
)

// Material is a catalog entry for supplied construction materials.
type Material struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Unit string    `json:"unit"`
}

// MaterialDelivery records a delivery of materials to the site.
type MaterialDelivery struct {
	ID           uuid.UUID               `json:"id"`
	ProjectID    uuid.UUID               `json:"project_id"`
	ForemanID    uuid.UUID               `json:"foreman_id"`
	DeliveryDate time.Time               `json:"delivery_date"`
	Items        []*MaterialDeliveryItem `json:"items,omitempty"`
}

// MaterialDeliveryItem is a single material position within a delivery.
type MaterialDeliveryItem struct {
	ID         uuid.UUID `json:"id"`
	DeliveryID uuid.UUID `json:"delivery_id"`
	MaterialID uuid.UUID `json:"material_id"`
	Quantity   float64   `json:"quantity"`
}
