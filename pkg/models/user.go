// Package models contains domain types for prorab-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles within a construction project.
const (
	UserRoleAdmin     = "admin"
	UserRoleInspector = "inspector"
	UserRoleForeman   = "foreman"
)

// User is a mirrored profile of an auth-service account. prorab-engine never
// authenticates users itself; it stores profiles for display and attribution.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns the user's name for audit trails: first and last name
// when both are known, otherwise the email address.
func (u *User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Email
}
