package repositories

import (
	"context"
	"testing"
	"time"

	"imeitrack/internal/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFolioIncrements(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewTransfersRepo(mockPool)

	mockPool.ExpectQuery(`INSERT INTO folio_counters`).
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(int64(42)))

	folio, err := repo.NextFolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), folio)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func casTransfer() *models.Transfer {
	now := time.Now()
	return &models.Transfer{
		ID:               uuid.New(),
		Folio:            7,
		TargetLocationID: uuid.New(),
		InitiatedBy:      "Alice Admin",
		State:            models.TransferPendingDestination,
		Units: []models.UnitSnapshot{
			{IMEI: "356938035643809", ProductName: "Apple iPhone 15", OriginalLocationID: uuid.New()},
		},
		AdminConfirmation: &models.Confirmation{By: "Alice Admin", At: now},
		ReportText:        "report",
	}
}

func TestUpdateStateCASApplied(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewTransfersRepo(mockPool)
	transfer := casTransfer()

	mockPool.ExpectExec(`UPDATE transfers`).
		WithArgs(
			transfer.State,
			pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(),
			transfer.ReportText,
			transfer.ID,
			models.TransferPendingAdmin,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.UpdateStateCAS(context.Background(), transfer, models.TransferPendingAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestUpdateStateCASLostRace(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewTransfersRepo(mockPool)
	transfer := casTransfer()

	// Zero rows affected means another writer changed the state first.
	mockPool.ExpectExec(`UPDATE transfers`).
		WithArgs(
			transfer.State,
			pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(),
			transfer.ReportText,
			transfer.ID,
			models.TransferPendingAdmin,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.UpdateStateCAS(context.Background(), transfer, models.TransferPendingAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetByIDReconstructsConfirmations(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewTransfersRepo(mockPool)

	id := uuid.New()
	targetID := uuid.New()
	adminBy := "Alice Admin"
	adminAt := time.Now().UTC()
	unitsJSON := []byte(`[{"imei":"356938035643809","product_name":"Apple iPhone 15","original_location_id":"11111111-1111-1111-1111-111111111111"}]`)

	rows := pgxmock.NewRows([]string{
		"id", "folio", "target_location_id", "initiated_by", "state", "units",
		"admin_confirmed_by", "admin_confirmed_at",
		"destination_confirmed_by", "destination_confirmed_at",
		"cancelled_by", "cancelled_at",
		"report_text", "created_at", "updated_at",
	}).AddRow(
		id, int64(7), targetID, "Alice Admin", models.TransferPendingDestination, unitsJSON,
		&adminBy, &adminAt,
		nil, nil,
		nil, nil,
		"report", time.Now(), time.Now(),
	)

	mockPool.ExpectQuery(`FROM transfers WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(rows)

	transfer, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), transfer.Folio)
	require.NotNil(t, transfer.AdminConfirmation)
	assert.Equal(t, "Alice Admin", transfer.AdminConfirmation.By)
	assert.Nil(t, transfer.DestinationConfirmation)
	assert.Nil(t, transfer.Cancellation)
	require.Len(t, transfer.Units, 1)
	assert.Equal(t, "356938035643809", transfer.Units[0].IMEI)
}
