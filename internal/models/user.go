package models

import (
	"time"

	"github.com/google/uuid"
)

// Role names. A destination agent's role is scoped to exactly one location,
// carried in User.LocationID.
const (
	RoleAdmin            = "admin"
	RoleDestinationAgent = "destination-agent"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	Name         string     `json:"name" db:"name"`
	Role         string     `json:"role" db:"role"`
	LocationID   *uuid.UUID `json:"location_id,omitempty" db:"location_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Actor is the acting identity passed explicitly into every mutating service
// call. Engines never read identity from ambient state.
type Actor struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`
}

// IsAdmin reports whether the actor holds the administrator role.
func (a *Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
