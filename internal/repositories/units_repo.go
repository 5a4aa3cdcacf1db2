package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"imeitrack/internal/common"
	"imeitrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type UnitsRepository interface {
	Create(ctx context.Context, unit *models.InventoryUnit) error
	GetByIMEI(ctx context.Context, imei string) (*models.InventoryUnit, error)
	GetByIMEIs(ctx context.Context, imeis []string) ([]*models.InventoryUnit, error)
	DeleteByIMEIs(ctx context.Context, imeis []string) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*models.InventoryUnit, error)
	ListByProductType(ctx context.Context, productTypeID uuid.UUID) ([]*models.InventoryUnit, error)
	UpdateLocations(ctx context.Context, imeis []string, locationID uuid.UUID) (int64, error)
	UpdateLocation(ctx context.Context, imei string, locationID uuid.UUID) error
	UpdateStatuses(ctx context.Context, imeis []string, status models.UnitStatus) (int64, error)
	ReassignProductType(ctx context.Context, fromTypeID, toTypeID uuid.UUID) (int64, error)
	AdvancedSearch(ctx context.Context, filter *models.UnitSearchFilter) ([]*models.InventoryUnit, error)
}

type unitsRepo struct {
	db DBTX
}

func NewUnitsRepo(db DBTX) UnitsRepository {
	return &unitsRepo{db: db}
}

const unitColumns = `imei, imei2, product_type_id, location_id, status, memory, color, supplier, purchase_price, purchase_invoice_id, purchase_invoice_date, created_at, updated_at`

func scanUnit(row pgx.Row) (*models.InventoryUnit, error) {
	unit := &models.InventoryUnit{}
	err := row.Scan(
		&unit.IMEI,
		&unit.IMEI2,
		&unit.ProductTypeID,
		&unit.LocationID,
		&unit.Status,
		&unit.Memory,
		&unit.Color,
		&unit.Supplier,
		&unit.PurchasePrice,
		&unit.PurchaseInvoiceID,
		&unit.PurchaseInvoiceDate,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *unitsRepo) Create(ctx context.Context, unit *models.InventoryUnit) error {
	query := `
		INSERT INTO units (imei, imei2, product_type_id, location_id, status, memory, color, supplier, purchase_price, purchase_invoice_id, purchase_invoice_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query,
		unit.IMEI,
		unit.IMEI2,
		unit.ProductTypeID,
		unit.LocationID,
		unit.Status,
		unit.Memory,
		unit.Color,
		unit.Supplier,
		unit.PurchasePrice,
		unit.PurchaseInvoiceID,
		unit.PurchaseInvoiceDate,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("imei %s already registered: %w", unit.IMEI, common.ErrDuplicateKey)
	}
	return err
}

func (r *unitsRepo) GetByIMEI(ctx context.Context, imei string) (*models.InventoryUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE imei = $1`
	unit, err := scanUnit(dbFrom(ctx, r.db).QueryRow(ctx, query, imei))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("unit %s: %w", imei, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// GetByIMEIs returns the units for every listed IMEI. Order follows the
// database; the caller is responsible for batch completeness checks.
func (r *unitsRepo) GetByIMEIs(ctx context.Context, imeis []string) ([]*models.InventoryUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE imei = ANY($1)`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, imeis)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.InventoryUnit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (r *unitsRepo) DeleteByIMEIs(ctx context.Context, imeis []string) (int64, error) {
	query := `DELETE FROM units WHERE imei = ANY($1)`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, imeis)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *unitsRepo) List(ctx context.Context, limit, offset int) ([]*models.InventoryUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM units ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.InventoryUnit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (r *unitsRepo) ListByProductType(ctx context.Context, productTypeID uuid.UUID) ([]*models.InventoryUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE product_type_id = $1 ORDER BY imei`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, productTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.InventoryUnit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (r *unitsRepo) UpdateLocations(ctx context.Context, imeis []string, locationID uuid.UUID) (int64, error) {
	query := `UPDATE units SET location_id = $1, updated_at = NOW() WHERE imei = ANY($2)`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, locationID, imeis)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *unitsRepo) UpdateLocation(ctx context.Context, imei string, locationID uuid.UUID) error {
	query := `UPDATE units SET location_id = $1, updated_at = NOW() WHERE imei = $2`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, locationID, imei)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unit %s: %w", imei, common.ErrNotFound)
	}
	return nil
}

func (r *unitsRepo) UpdateStatuses(ctx context.Context, imeis []string, status models.UnitStatus) (int64, error) {
	query := `UPDATE units SET status = $1, updated_at = NOW() WHERE imei = ANY($2)`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, status, imeis)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *unitsRepo) ReassignProductType(ctx context.Context, fromTypeID, toTypeID uuid.UUID) (int64, error) {
	query := `UPDATE units SET product_type_id = $1, updated_at = NOW() WHERE product_type_id = $2`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, toTypeID, fromTypeID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AdvancedSearch performs filtered unit search with dynamic conditions.
func (r *unitsRepo) AdvancedSearch(ctx context.Context, filter *models.UnitSearchFilter) ([]*models.InventoryUnit, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `
		SELECT u.imei, u.imei2, u.product_type_id, u.location_id, u.status, u.memory, u.color, u.supplier, u.purchase_price, u.purchase_invoice_id, u.purchase_invoice_date, u.created_at, u.updated_at
		FROM units u
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 0

	if filter.Query != "" {
		argIdx++
		queryBase += fmt.Sprintf(` AND (
			u.imei LIKE $%d || '%%' OR
			EXISTS (
				SELECT 1 FROM product_types p
				WHERE p.id = u.product_type_id AND (p.brand ILIKE '%%' || $%d || '%%' OR p.model ILIKE '%%' || $%d || '%%')
			)
		)`, argIdx, argIdx, argIdx)
		args = append(args, filter.Query)
	}

	if filter.LocationID != nil {
		argIdx++
		queryBase += fmt.Sprintf(` AND u.location_id = $%d`, argIdx)
		args = append(args, *filter.LocationID)
	}

	if filter.ProductTypeID != nil {
		argIdx++
		queryBase += fmt.Sprintf(` AND u.product_type_id = $%d`, argIdx)
		args = append(args, *filter.ProductTypeID)
	}

	if filter.Status != nil {
		argIdx++
		queryBase += fmt.Sprintf(` AND u.status = $%d`, argIdx)
		args = append(args, *filter.Status)
	}

	if filter.Supplier != nil {
		argIdx++
		queryBase += fmt.Sprintf(` AND u.supplier = $%d`, argIdx)
		args = append(args, *filter.Supplier)
	}

	sortField := "u.updated_at"
	switch filter.SortBy {
	case "imei":
		sortField = "u.imei"
	case "status":
		sortField = "u.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	argIdx++
	queryBase += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		argIdx++
		queryBase += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := dbFrom(ctx, r.db).Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.InventoryUnit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}
