package models

import (
	"time"

	"github.com/google/uuid"
)

// UnitStatus enumerates the lifecycle states of a tracked unit.
type UnitStatus string

const (
	StatusNew         UnitStatus = "new"
	StatusUnderRepair UnitStatus = "under_repair"
	StatusRepaired    UnitStatus = "repaired"
	StatusForSale     UnitStatus = "for_sale"
	StatusSold        UnitStatus = "sold"
	StatusLost        UnitStatus = "lost"
	StatusClearance   UnitStatus = "clearance"
)

// Valid reports whether s is one of the known unit statuses.
func (s UnitStatus) Valid() bool {
	switch s {
	case StatusNew, StatusUnderRepair, StatusRepaired, StatusForSale, StatusSold, StatusLost, StatusClearance:
		return true
	}
	return false
}

// InventoryUnit is a single physical unit tracked by IMEI. The IMEI is the
// primary key and never changes; location and status are the mutable parts.
type InventoryUnit struct {
	IMEI                string     `json:"imei" db:"imei"`
	IMEI2               *string    `json:"imei2,omitempty" db:"imei2"`
	ProductTypeID       uuid.UUID  `json:"product_type_id" db:"product_type_id"`
	LocationID          uuid.UUID  `json:"location_id" db:"location_id"`
	Status              UnitStatus `json:"status" db:"status"`
	Memory              *string    `json:"memory,omitempty" db:"memory"`
	Color               *string    `json:"color,omitempty" db:"color"`
	Supplier            *string    `json:"supplier,omitempty" db:"supplier"`
	PurchasePrice       *float64   `json:"purchase_price,omitempty" db:"purchase_price"`
	PurchaseInvoiceID   *string    `json:"purchase_invoice_id,omitempty" db:"purchase_invoice_id"`
	PurchaseInvoiceDate *time.Time `json:"purchase_invoice_date,omitempty" db:"purchase_invoice_date"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// UnitSearchFilter holds search and filter criteria for unit queries
type UnitSearchFilter struct {
	Query         string      `json:"query,omitempty"`           // Matches IMEI prefix, brand, model
	LocationID    *uuid.UUID  `json:"location_id,omitempty"`     // Location filter
	ProductTypeID *uuid.UUID  `json:"product_type_id,omitempty"` // Product type filter
	Status        *UnitStatus `json:"status,omitempty"`          // Status filter
	Supplier      *string     `json:"supplier,omitempty"`        // Exact supplier match
	SortBy        string      `json:"sort_by,omitempty"`         // Sort field: imei, status, updated_at
	SortOrder     string      `json:"sort_order,omitempty"`      // Sort order: asc, desc
	Limit         int         `json:"limit,omitempty"`           // Page size (default: 50)
	Offset        int         `json:"offset,omitempty"`          // Page offset
}

// StatusChange records a single unit's before/after status within a bulk
// status mutation. The audit log keeps the full list, never just the new
// value, so history can be reconstructed from the log alone.
type StatusChange struct {
	IMEI      string     `json:"imei"`
	OldStatus UnitStatus `json:"old_status"`
	NewStatus UnitStatus `json:"new_status"`
}

// ImportResult reports the outcome of a restore/import run. Import is the one
// bulk path that skips bad records instead of rejecting the whole batch.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Reasons  []string `json:"reasons,omitempty"`
}
