package repositories

import (
	"context"
	"testing"

	"imeitrack/internal/common"
	"imeitrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitCreateMapsUniqueViolation(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewUnitsRepo(mockPool)
	unit := &models.InventoryUnit{
		IMEI:          "356938035643809",
		ProductTypeID: uuid.New(),
		LocationID:    uuid.New(),
		Status:        models.StatusNew,
	}

	mockPool.ExpectExec(`INSERT INTO units`).
		WithArgs(
			unit.IMEI, unit.IMEI2, unit.ProductTypeID, unit.LocationID, unit.Status,
			unit.Memory, unit.Color, unit.Supplier, unit.PurchasePrice,
			unit.PurchaseInvoiceID, unit.PurchaseInvoiceDate,
		).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), unit)
	assert.ErrorIs(t, err, common.ErrDuplicateKey)
}

func TestUnitGetByIMEINotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewUnitsRepo(mockPool)

	mockPool.ExpectQuery(`FROM units WHERE imei = \$1`).
		WithArgs("356938035643809").
		WillReturnRows(pgxmock.NewRows([]string{
			"imei", "imei2", "product_type_id", "location_id", "status",
			"memory", "color", "supplier", "purchase_price",
			"purchase_invoice_id", "purchase_invoice_date", "created_at", "updated_at",
		}))

	_, err = repo.GetByIMEI(context.Background(), "356938035643809")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateStatusesBatches(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewUnitsRepo(mockPool)
	imeis := []string{"356938035643809", "490154203237518"}

	mockPool.ExpectExec(`UPDATE units SET status = \$1`).
		WithArgs(models.StatusForSale, imeis).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	affected, err := repo.UpdateStatuses(context.Background(), imeis, models.StatusForSale)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestReassignProductTypeMovesAllUnits(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewUnitsRepo(mockPool)
	fromID := uuid.New()
	toID := uuid.New()

	mockPool.ExpectExec(`UPDATE units SET product_type_id = \$1`).
		WithArgs(toID, fromID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	affected, err := repo.ReassignProductType(context.Background(), fromID, toID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}
