package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit action tags. Each tag has exactly one details payload type; the set
// is closed so log consumers can handle every kind exhaustively.
const (
	ActionItemsTransferred   = "items_transferred"
	ActionTransferConfirmed  = "transfer_confirmed"
	ActionTransferCancelled  = "transfer_cancelled"
	ActionItemsStatusChanged = "items_status_changed"
	ActionItemsReassigned    = "items_reassigned"
	ActionProductTypeDeleted = "product_type_deleted"
	ActionUnitsDeleted       = "units_deleted"
	ActionUnitsImported      = "units_imported"
	ActionUnitRegistered     = "unit_registered"
)

// AuditLog is an append-only record of a mutation. Entries are immutable once
// written; corrective actions append new entries instead of editing old ones.
// Seq is assigned by the store and gives a total order across entries.
type AuditLog struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Seq       int64           `json:"seq" db:"seq"`
	Action    string          `json:"action" db:"action"`
	RecordID  string          `json:"record_id" db:"record_id"`
	ActorID   uuid.UUID       `json:"actor_id" db:"actor_id"`
	ActorName string          `json:"actor_name" db:"actor_name"`
	ActorRole string          `json:"actor_role" db:"actor_role"`
	Details   json.RawMessage `json:"details" db:"details"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ItemsTransferredDetails carries the full creation-time snapshot of a
// transfer, including every unit's original location.
type ItemsTransferredDetails struct {
	TransferID       uuid.UUID      `json:"transfer_id"`
	Folio            string         `json:"folio"`
	TargetLocationID uuid.UUID      `json:"target_location_id"`
	Units            []UnitSnapshot `json:"units"`
}

// TransferConfirmedDetails records one confirmation stage ("admin" or
// "destination").
type TransferConfirmedDetails struct {
	TransferID uuid.UUID `json:"transfer_id"`
	Folio      string    `json:"folio"`
	Stage      string    `json:"stage"`
	NewState   string    `json:"new_state"`
}

type TransferCancelledDetails struct {
	TransferID    uuid.UUID      `json:"transfer_id"`
	Folio         string         `json:"folio"`
	RestoredUnits []UnitSnapshot `json:"restored_units"`
}

// ItemsStatusChangedDetails keeps the full before/after list, never just the
// new value, so the log alone suffices to reconstruct history.
type ItemsStatusChangedDetails struct {
	Changes []StatusChange `json:"changes"`
}

type ItemsReassignedDetails struct {
	FromProductTypeID uuid.UUID `json:"from_product_type_id"`
	ToProductTypeID   uuid.UUID `json:"to_product_type_id"`
	IMEIs             []string  `json:"imeis"`
}

// ProductTypeDeletedDetails links back to the reassignment entry when the
// delete was preceded by one.
type ProductTypeDeletedDetails struct {
	ProductTypeID     uuid.UUID  `json:"product_type_id"`
	Brand             string     `json:"brand"`
	Model             string     `json:"model"`
	ReassignedItemsTo *uuid.UUID `json:"reassigned_items_to,omitempty"`
	ReassignLogID     *uuid.UUID `json:"reassign_log_id,omitempty"`
}

// UnitsDeletedDetails is the forensic pre-delete snapshot.
type UnitsDeletedDetails struct {
	Units       []*InventoryUnit `json:"units"`
	ArchiveName *string          `json:"archive_name,omitempty"`
}

type UnitsImportedDetails struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Reasons  []string `json:"reasons,omitempty"`
}

type UnitRegisteredDetails struct {
	IMEI          string    `json:"imei"`
	ProductTypeID uuid.UUID `json:"product_type_id"`
	LocationID    uuid.UUID `json:"location_id"`
}

// EncodeDetails serializes a typed details payload for storage.
func EncodeDetails(details any) (json.RawMessage, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit details: %w", err)
	}
	return raw, nil
}

// DecodeDetails decodes the entry's payload into its action-specific type.
// The switch is exhaustive over the action tags above; an unknown tag is an
// error, not a silently-open dictionary.
func (l *AuditLog) DecodeDetails() (any, error) {
	var details any
	switch l.Action {
	case ActionItemsTransferred:
		details = &ItemsTransferredDetails{}
	case ActionTransferConfirmed:
		details = &TransferConfirmedDetails{}
	case ActionTransferCancelled:
		details = &TransferCancelledDetails{}
	case ActionItemsStatusChanged:
		details = &ItemsStatusChangedDetails{}
	case ActionItemsReassigned:
		details = &ItemsReassignedDetails{}
	case ActionProductTypeDeleted:
		details = &ProductTypeDeletedDetails{}
	case ActionUnitsDeleted:
		details = &UnitsDeletedDetails{}
	case ActionUnitsImported:
		details = &UnitsImportedDetails{}
	case ActionUnitRegistered:
		details = &UnitRegisteredDetails{}
	default:
		return nil, fmt.Errorf("unknown audit action %q", l.Action)
	}
	if err := json.Unmarshal(l.Details, details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s details: %w", l.Action, err)
	}
	return details, nil
}

// AuditLogFilters represents filters for querying audit logs
type AuditLogFilters struct {
	Action    *string    `json:"action"`
	RecordID  *string    `json:"record_id"`
	ActorID   *uuid.UUID `json:"actor_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}
