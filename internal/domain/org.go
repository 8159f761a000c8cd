package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the master registry entry for one tenant. Name is the
// primary key; StoreID is derived deterministically from Name and changes
// only when Name changes.
type Organization struct {
	Name      string    `json:"organization_name"`
	StoreID   string    `json:"store_id"`
	AdminID   uuid.UUID `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrgProvision is returned from a successful organization create.
type OrgProvision struct {
	Name    string    `json:"organization_name"`
	StoreID string    `json:"store_id"`
	AdminID uuid.UUID `json:"admin_id"`
}

// OrgUpdate carries the optional fields of an organization update. A nil
// field means "leave unchanged". NewName equal to the current name is a
// no-op rename.
type OrgUpdate struct {
	NewName  *string
	Email    *string
	Password *string
}

// OrgUpdateResult reports the outcome of an update, including the
// organization's name after any rename.
type OrgUpdateResult struct {
	Message string `json:"message"`
	Name    string `json:"organization_name"`
}
