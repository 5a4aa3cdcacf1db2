package repositories

import (
	"context"
	"errors"
	"fmt"

	"imeitrack/internal/common"
	"imeitrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductTypesRepository interface {
	Create(ctx context.Context, productType *models.ProductType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductType, error)
	Update(ctx context.Context, productType *models.ProductType) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.ProductType, error)
	ListExcept(ctx context.Context, excludeID uuid.UUID) ([]*models.ProductType, error)
}

type productTypesRepo struct {
	db DBTX
}

func NewProductTypesRepo(db DBTX) ProductTypesRepository {
	return &productTypesRepo{db: db}
}

func (r *productTypesRepo) Create(ctx context.Context, productType *models.ProductType) error {
	query := `
		INSERT INTO product_types (id, brand, model, min_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, productType.ID, productType.Brand, productType.Model, productType.MinStock)
	if isUniqueViolation(err) {
		return fmt.Errorf("product type %s %s already exists: %w", productType.Brand, productType.Model, common.ErrDuplicateKey)
	}
	return err
}

func (r *productTypesRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductType, error) {
	productType := &models.ProductType{}
	query := `
		SELECT id, brand, model, min_stock, created_at, updated_at
		FROM product_types
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&productType.ID,
		&productType.Brand,
		&productType.Model,
		&productType.MinStock,
		&productType.CreatedAt,
		&productType.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product type %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return productType, nil
}

func (r *productTypesRepo) Update(ctx context.Context, productType *models.ProductType) error {
	query := `
		UPDATE product_types
		SET brand = $1, model = $2, min_stock = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, productType.Brand, productType.Model, productType.MinStock, productType.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product type %s: %w", productType.ID, common.ErrNotFound)
	}
	return nil
}

func (r *productTypesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM product_types WHERE id = $1`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product type %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *productTypesRepo) List(ctx context.Context, limit, offset int) ([]*models.ProductType, error) {
	query := `
		SELECT id, brand, model, min_stock, created_at, updated_at
		FROM product_types
		ORDER BY brand, model
		LIMIT $1 OFFSET $2
	`
	return r.queryMany(ctx, query, limit, offset)
}

// ListExcept returns every product type other than excludeID. These are the
// reassignment candidates offered during a guarded delete.
func (r *productTypesRepo) ListExcept(ctx context.Context, excludeID uuid.UUID) ([]*models.ProductType, error) {
	query := `
		SELECT id, brand, model, min_stock, created_at, updated_at
		FROM product_types
		WHERE id <> $1
		ORDER BY brand, model
	`
	return r.queryMany(ctx, query, excludeID)
}

func (r *productTypesRepo) queryMany(ctx context.Context, query string, args ...any) ([]*models.ProductType, error) {
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var productTypes []*models.ProductType
	for rows.Next() {
		productType := &models.ProductType{}
		if err := rows.Scan(
			&productType.ID,
			&productType.Brand,
			&productType.Model,
			&productType.MinStock,
			&productType.CreatedAt,
			&productType.UpdatedAt,
		); err != nil {
			return nil, err
		}
		productTypes = append(productTypes, productType)
	}
	return productTypes, rows.Err()
}
