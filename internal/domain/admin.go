package domain

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a credential record for an organization administrator.
// Organization is a lookup key back to the registry entry, not a foreign
// key enforced by the store.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Organization string    `json:"organization"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminUpdate carries the credential fields that may be changed on the
// admins of an organization. Nil means unchanged.
type AdminUpdate struct {
	Email        *string
	PasswordHash *string
}
