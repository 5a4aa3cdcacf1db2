package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"imeitrack/internal/common"
	"imeitrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransfersRepository interface {
	// NextFolio atomically increments and returns the transfer folio
	// counter. Call it inside the same transaction as Create so a crash
	// can never reuse a folio.
	NextFolio(ctx context.Context) (int64, error)

	Create(ctx context.Context, transfer *models.Transfer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	List(ctx context.Context, filters *models.TransferFilters) ([]*models.Transfer, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transfer, error)

	// UpdateStateCAS writes the transfer's mutable fields (state,
	// confirmations, cancellation, report text) only if the stored state
	// still equals expectedState. Returns false without mutating anything
	// when another writer got there first.
	UpdateStateCAS(ctx context.Context, transfer *models.Transfer, expectedState models.TransferState) (bool, error)
}

type transfersRepo struct {
	db DBTX
}

func NewTransfersRepo(db DBTX) TransfersRepository {
	return &transfersRepo{db: db}
}

func (r *transfersRepo) NextFolio(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO folio_counters (name, value) VALUES ('transfers', 1)
		ON CONFLICT (name) DO UPDATE SET value = folio_counters.value + 1
		RETURNING value
	`
	var folio int64
	if err := dbFrom(ctx, r.db).QueryRow(ctx, query).Scan(&folio); err != nil {
		return 0, fmt.Errorf("failed to allocate folio: %w", err)
	}
	return folio, nil
}

func (r *transfersRepo) Create(ctx context.Context, transfer *models.Transfer) error {
	unitsJSON, err := json.Marshal(transfer.Units)
	if err != nil {
		return fmt.Errorf("failed to marshal unit snapshots: %w", err)
	}

	query := `
		INSERT INTO transfers (id, folio, target_location_id, initiated_by, state, units, report_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err = dbFrom(ctx, r.db).Exec(ctx, query,
		transfer.ID,
		transfer.Folio,
		transfer.TargetLocationID,
		transfer.InitiatedBy,
		transfer.State,
		unitsJSON,
		transfer.ReportText,
	)
	return err
}

const transferColumns = `id, folio, target_location_id, initiated_by, state, units,
	admin_confirmed_by, admin_confirmed_at,
	destination_confirmed_by, destination_confirmed_at,
	cancelled_by, cancelled_at,
	report_text, created_at, updated_at`

func scanTransfer(row pgx.Row) (*models.Transfer, error) {
	transfer := &models.Transfer{}
	var unitsJSON []byte
	var adminBy, destBy, cancelBy *string
	var adminAt, destAt, cancelAt *time.Time

	err := row.Scan(
		&transfer.ID,
		&transfer.Folio,
		&transfer.TargetLocationID,
		&transfer.InitiatedBy,
		&transfer.State,
		&unitsJSON,
		&adminBy, &adminAt,
		&destBy, &destAt,
		&cancelBy, &cancelAt,
		&transfer.ReportText,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(unitsJSON, &transfer.Units); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unit snapshots: %w", err)
	}
	if adminBy != nil && adminAt != nil {
		transfer.AdminConfirmation = &models.Confirmation{By: *adminBy, At: *adminAt}
	}
	if destBy != nil && destAt != nil {
		transfer.DestinationConfirmation = &models.Confirmation{By: *destBy, At: *destAt}
	}
	if cancelBy != nil && cancelAt != nil {
		transfer.Cancellation = &models.Confirmation{By: *cancelBy, At: *cancelAt}
	}
	return transfer, nil
}

func (r *transfersRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	transfer, err := scanTransfer(dbFrom(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transfer %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (r *transfersRepo) List(ctx context.Context, filters *models.TransferFilters) ([]*models.Transfer, error) {
	if filters == nil {
		filters = &models.TransferFilters{}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}

	query := `SELECT ` + transferColumns + ` FROM transfers WHERE 1=1`
	args := []interface{}{}
	argIdx := 0

	if filters.State != nil {
		argIdx++
		query += fmt.Sprintf(" AND state = $%d", argIdx)
		args = append(args, *filters.State)
	}
	if filters.TargetLocationID != nil {
		argIdx++
		query += fmt.Sprintf(" AND target_location_id = $%d", argIdx)
		args = append(args, *filters.TargetLocationID)
	}

	query += " ORDER BY folio DESC"
	argIdx++
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filters.Limit)
	if filters.Offset > 0 {
		argIdx++
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	return r.queryMany(ctx, query, args...)
}

func (r *transfersRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE state IN ($1, $2) AND updated_at < $3
		ORDER BY folio
	`
	return r.queryMany(ctx, query, models.TransferPendingAdmin, models.TransferPendingDestination, cutoff)
}

func (r *transfersRepo) queryMany(ctx context.Context, query string, args ...any) ([]*models.Transfer, error) {
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*models.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, rows.Err()
}

func (r *transfersRepo) UpdateStateCAS(ctx context.Context, transfer *models.Transfer, expectedState models.TransferState) (bool, error) {
	var adminBy, destBy, cancelBy *string
	var adminAt, destAt, cancelAt *time.Time
	if c := transfer.AdminConfirmation; c != nil {
		adminBy, adminAt = &c.By, &c.At
	}
	if c := transfer.DestinationConfirmation; c != nil {
		destBy, destAt = &c.By, &c.At
	}
	if c := transfer.Cancellation; c != nil {
		cancelBy, cancelAt = &c.By, &c.At
	}

	query := `
		UPDATE transfers
		SET state = $1,
			admin_confirmed_by = $2, admin_confirmed_at = $3,
			destination_confirmed_by = $4, destination_confirmed_at = $5,
			cancelled_by = $6, cancelled_at = $7,
			report_text = $8, updated_at = NOW()
		WHERE id = $9 AND state = $10
	`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query,
		transfer.State,
		adminBy, adminAt,
		destBy, destAt,
		cancelBy, cancelAt,
		transfer.ReportText,
		transfer.ID,
		expectedState,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
