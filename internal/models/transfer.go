package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransferState is the FSM state of a transfer. Legal transitions:
//
//	pending_admin -> pending_destination -> completed
//	pending_admin | pending_destination -> cancelled (admin only)
//
// completed and cancelled are terminal.
type TransferState string

const (
	TransferPendingAdmin       TransferState = "pending_admin_confirmation"
	TransferPendingDestination TransferState = "pending_destination_confirmation"
	TransferCompleted          TransferState = "completed"
	TransferCancelled          TransferState = "cancelled"
)

// Terminal reports whether no further transitions are permitted.
func (s TransferState) Terminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// UnitSnapshot captures a unit at transfer-creation time. OriginalLocationID
// is what cancellation rolls back to; it is recorded here rather than
// inferred later.
type UnitSnapshot struct {
	IMEI               string    `json:"imei"`
	ProductName        string    `json:"product_name"`
	OriginalLocationID uuid.UUID `json:"original_location_id"`
}

// Confirmation records who attested to a transfer stage and when.
type Confirmation struct {
	By string    `json:"by"`
	At time.Time `json:"at"`
}

// Transfer moves a batch of units to a target location. Units are relocated
// immediately on creation; the confirmation chain (admin, then destination
// agent) recovers correctness afterwards, and cancellation restores the
// snapshot locations.
type Transfer struct {
	ID                      uuid.UUID      `json:"id" db:"id"`
	Folio                   int64          `json:"folio" db:"folio"`
	TargetLocationID        uuid.UUID      `json:"target_location_id" db:"target_location_id"`
	InitiatedBy             string         `json:"initiated_by" db:"initiated_by"`
	State                   TransferState  `json:"state" db:"state"`
	Units                   []UnitSnapshot `json:"units" db:"units"`
	AdminConfirmation       *Confirmation  `json:"admin_confirmation,omitempty" db:"admin_confirmation"`
	DestinationConfirmation *Confirmation  `json:"destination_confirmation,omitempty" db:"destination_confirmation"`
	Cancellation            *Confirmation  `json:"cancellation,omitempty" db:"cancellation"`
	ReportText              string         `json:"report_text" db:"report_text"`
	CreatedAt               time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at" db:"updated_at"`
}

// FolioString renders the human-facing folio, e.g. TR-00001.
func (t *Transfer) FolioString() string {
	return FormatFolio(t.Folio)
}

// FormatFolio renders a folio number in the TR-00001 format.
func FormatFolio(n int64) string {
	return fmt.Sprintf("TR-%05d", n)
}

// TransferFilters narrows transfer listings.
type TransferFilters struct {
	State            *TransferState `json:"state,omitempty"`
	TargetLocationID *uuid.UUID     `json:"target_location_id,omitempty"`
	Limit            int            `json:"limit,omitempty"`
	Offset           int            `json:"offset,omitempty"`
}
