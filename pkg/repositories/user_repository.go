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

// UserRepository manages mirrored auth-service user profiles.
type UserRepository interface {
	// Upsert creates or refreshes the profile mirror for a user seen in a
	// validated token. Idempotent.
	Upsert(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (id, email, first_name, last_name, role, phone, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    role = EXCLUDED.role`

	_, err := q.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.Role,
		user.Phone, user.IsActive, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	var user models.User
	err := q.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, role, phone, is_active, created_at
		 FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role,
			&user.Phone, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
