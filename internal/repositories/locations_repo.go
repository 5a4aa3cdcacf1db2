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

type LocationsRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	List(ctx context.Context, limit, offset int) ([]*models.Location, error)
}

type locationsRepo struct {
	db DBTX
}

func NewLocationsRepo(db DBTX) LocationsRepository {
	return &locationsRepo{db: db}
}

func (r *locationsRepo) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, location.ID, location.Name, location.Address)
	if isUniqueViolation(err) {
		return fmt.Errorf("location %s already exists: %w", location.Name, common.ErrDuplicateKey)
	}
	return err
}

func (r *locationsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	location := &models.Location{}
	query := `SELECT id, name, address, created_at, updated_at FROM locations WHERE id = $1`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&location.ID,
		&location.Name,
		&location.Address,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("location %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return location, nil
}

func (r *locationsRepo) Update(ctx context.Context, location *models.Location) error {
	query := `UPDATE locations SET name = $1, address = $2, updated_at = NOW() WHERE id = $3`
	tag, err := dbFrom(ctx, r.db).Exec(ctx, query, location.Name, location.Address, location.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("location %s: %w", location.ID, common.ErrNotFound)
	}
	return nil
}

func (r *locationsRepo) List(ctx context.Context, limit, offset int) ([]*models.Location, error) {
	query := `SELECT id, name, address, created_at, updated_at FROM locations ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		location := &models.Location{}
		if err := rows.Scan(&location.ID, &location.Name, &location.Address, &location.CreatedAt, &location.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}
