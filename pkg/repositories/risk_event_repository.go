package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prorab-io/prorab-engine/pkg/database"
	"github.com/prorab-io/prorab-engine/pkg/models"
)

// RiskEventRepository is the append-only risk ledger. Events are created in
// batches inside the recompute transaction and never updated or deleted.
type RiskEventRepository interface {
	CreateBatch(ctx context.Context, events []*models.RiskEvent) error
	// ListByProject returns the project's events newest first, each enriched
	// with the resolved initiator name.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.RiskHistoryEntry, error)
}

type riskEventRepository struct {
	db *database.DB
}

// NewRiskEventRepository creates a new risk event repository.
func NewRiskEventRepository(db *database.DB) RiskEventRepository {
	return &riskEventRepository{db: db}
}

func (r *riskEventRepository) CreateBatch(ctx context.Context, events []*models.RiskEvent) error {
	if len(events) == 0 {
		return nil
	}

	q := database.QuerierFrom(ctx, r.db.Pool)

	query := `
		INSERT INTO risk_events (id, project_id, timestamp, score_change, new_score, event_type, description, triggering_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	for _, event := range events {
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = now
		}

		_, err := q.Exec(ctx, query,
			event.ID,
			event.ProjectID,
			event.Timestamp,
			event.ScoreChange,
			event.NewScore,
			event.EventType,
			event.Description,
			event.TriggeringUserID,
		)
		if err != nil {
			return fmt.Errorf("failed to create risk event: %w", err)
		}
	}

	return nil
}

func (r *riskEventRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.RiskHistoryEntry, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	// Initiator name resolution is a read-time enrichment; events only store
	// the triggering user's id.
	query := `
		SELECT e.id, e.project_id, e.timestamp, e.score_change, e.new_score, e.event_type, e.description, e.triggering_user_id,
		       u.first_name, u.last_name, u.email
		FROM risk_events e
		LEFT JOIN users u ON u.id = e.triggering_user_id
		WHERE e.project_id = $1
		ORDER BY e.timestamp DESC, e.id DESC`

	rows, err := q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk events: %w", err)
	}
	defer rows.Close()

	var entries []*models.RiskHistoryEntry
	for rows.Next() {
		var entry models.RiskHistoryEntry
		var firstName, lastName, email *string

		err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.Timestamp,
			&entry.ScoreChange,
			&entry.NewScore,
			&entry.EventType,
			&entry.Description,
			&entry.TriggeringUserID,
			&firstName,
			&lastName,
			&email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk event: %w", err)
		}

		entry.InitiatorName = resolveInitiatorName(entry.TriggeringUserID, firstName, lastName, email)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate risk events: %w", err)
	}

	return entries, nil
}

// resolveInitiatorName picks the best display name for a ledger entry:
// first and last name, then email, then a generic system label.
func resolveInitiatorName(userID *uuid.UUID, firstName, lastName, email *string) string {
	if firstName != nil && *firstName != "" && lastName != nil && *lastName != "" {
		return *firstName + " " + *lastName
	}
	if email != nil && *email != "" {
		return *email
	}
	if userID != nil {
		return fmt.Sprintf("Пользователь %s", userID)
	}
	return "Система"
}
