package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductType is a catalog entry (brand + model). Deleting one while units
// still reference it goes through the reassignment protocol in the catalog
// service, never through a bare DELETE.
type ProductType struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Brand     string    `json:"brand" db:"brand"`
	Model     string    `json:"model" db:"model"`
	MinStock  *int      `json:"min_stock,omitempty" db:"min_stock"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Name renders the human-facing product name used in transfer snapshots.
func (p *ProductType) Name() string {
	return p.Brand + " " + p.Model
}

// DeletePlan is returned by DeleteProductType when dependent units exist and
// replacement types are available. The caller must follow up with an explicit
// ReassignAndDelete; nothing has been deleted yet.
type DeletePlan struct {
	Deleted       bool             `json:"deleted"`
	Blocked       bool             `json:"blocked"`
	AffectedUnits []*InventoryUnit `json:"affected_units,omitempty"`
	Candidates    []*ProductType   `json:"candidates,omitempty"`
}
