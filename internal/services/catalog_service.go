package services

import (
	"context"
	"fmt"
	"strings"

	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/repositories"

	"github.com/google/uuid"
)

// CatalogService manages product types and locations. Product type deletion
// is referential-integrity aware: units always point at a live type, so a
// type with dependents can only go away through explicit reassignment.
type CatalogService interface {
	CreateProductType(ctx context.Context, actor *models.Actor, productType *models.ProductType) error
	GetProductType(ctx context.Context, id uuid.UUID) (*models.ProductType, error)
	UpdateProductType(ctx context.Context, actor *models.Actor, productType *models.ProductType) error
	ListProductTypes(ctx context.Context) ([]*models.ProductType, error)

	// DeleteProductType resolves one of three outcomes: immediate delete
	// when nothing references the type, a blocked plan when dependents
	// exist but no replacement type does, or a candidate plan that asks
	// the caller to pick a replacement and call ReassignAndDelete.
	DeleteProductType(ctx context.Context, actor *models.Actor, id uuid.UUID) (*models.DeletePlan, error)

	// ReassignAndDelete moves every dependent unit to the replacement
	// type and deletes the original, atomically.
	ReassignAndDelete(ctx context.Context, actor *models.Actor, id, replacementID uuid.UUID) error

	CreateLocation(ctx context.Context, actor *models.Actor, location *models.Location) error
	GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
	UpdateLocation(ctx context.Context, actor *models.Actor, location *models.Location) error
	ListLocations(ctx context.Context) ([]*models.Location, error)
}

type catalogService struct {
	txManager     repositories.TxManager
	typesRepo     repositories.ProductTypesRepository
	locationsRepo repositories.LocationsRepository
	unitsRepo     repositories.UnitsRepository
	auditSvc      AuditLogsService
}

func NewCatalogService(
	txManager repositories.TxManager,
	typesRepo repositories.ProductTypesRepository,
	locationsRepo repositories.LocationsRepository,
	unitsRepo repositories.UnitsRepository,
	auditSvc AuditLogsService,
) CatalogService {
	return &catalogService{
		txManager:     txManager,
		typesRepo:     typesRepo,
		locationsRepo: locationsRepo,
		unitsRepo:     unitsRepo,
		auditSvc:      auditSvc,
	}
}

func (s *catalogService) CreateProductType(ctx context.Context, actor *models.Actor, productType *models.ProductType) error {
	productType.Brand = strings.TrimSpace(productType.Brand)
	productType.Model = strings.TrimSpace(productType.Model)
	if productType.Brand == "" || productType.Model == "" {
		return fmt.Errorf("brand and model are required")
	}
	if productType.ID == uuid.Nil {
		productType.ID = uuid.New()
	}
	return s.typesRepo.Create(ctx, productType)
}

func (s *catalogService) GetProductType(ctx context.Context, id uuid.UUID) (*models.ProductType, error) {
	return s.typesRepo.GetByID(ctx, id)
}

func (s *catalogService) UpdateProductType(ctx context.Context, actor *models.Actor, productType *models.ProductType) error {
	productType.Brand = strings.TrimSpace(productType.Brand)
	productType.Model = strings.TrimSpace(productType.Model)
	if productType.Brand == "" || productType.Model == "" {
		return fmt.Errorf("brand and model are required")
	}
	return s.typesRepo.Update(ctx, productType)
}

func (s *catalogService) ListProductTypes(ctx context.Context) ([]*models.ProductType, error) {
	return s.typesRepo.List(ctx, 500, 0)
}

func (s *catalogService) DeleteProductType(ctx context.Context, actor *models.Actor, id uuid.UUID) (*models.DeletePlan, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("product type deletion requires administrator role: %w", common.ErrInvalidRole)
	}

	var plan *models.DeletePlan
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		productType, err := s.typesRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		dependents, err := s.unitsRepo.ListByProductType(txCtx, id)
		if err != nil {
			return err
		}

		if len(dependents) == 0 {
			if err := s.typesRepo.Delete(txCtx, id); err != nil {
				return err
			}
			if _, err := s.auditSvc.LogAction(txCtx, actor, models.ActionProductTypeDeleted, id.String(), &models.ProductTypeDeletedDetails{
				ProductTypeID: id,
				Brand:         productType.Brand,
				Model:         productType.Model,
			}); err != nil {
				return err
			}
			plan = &models.DeletePlan{Deleted: true}
			return nil
		}

		candidates, err := s.typesRepo.ListExcept(txCtx, id)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			plan = &models.DeletePlan{
				Blocked:       true,
				AffectedUnits: dependents,
			}
			return fmt.Errorf("product type %s has %d dependent units and no replacement exists: %w", productType.Name(), len(dependents), common.ErrDeletionBlocked)
		}

		plan = &models.DeletePlan{
			AffectedUnits: dependents,
			Candidates:    candidates,
		}
		return nil
	})
	if err != nil && plan != nil && plan.Blocked {
		// Blocked is a reportable outcome, not an internal failure; the
		// plan carries the dependents for the caller to inspect.
		return plan, err
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *catalogService) ReassignAndDelete(ctx context.Context, actor *models.Actor, id, replacementID uuid.UUID) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("product type deletion requires administrator role: %w", common.ErrInvalidRole)
	}
	if id == replacementID {
		return fmt.Errorf("replacement type must differ from the type being deleted")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		productType, err := s.typesRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if _, err := s.typesRepo.GetByID(txCtx, replacementID); err != nil {
			return fmt.Errorf("replacement type: %w", err)
		}

		dependents, err := s.unitsRepo.ListByProductType(txCtx, id)
		if err != nil {
			return err
		}
		imeis := make([]string, 0, len(dependents))
		for _, unit := range dependents {
			imeis = append(imeis, unit.IMEI)
		}

		if _, err := s.unitsRepo.ReassignProductType(txCtx, id, replacementID); err != nil {
			return err
		}

		// The reassignment entry is written first so the deletion entry
		// can reference it. Both land in the same transaction.
		var reassignLogID *uuid.UUID
		if len(imeis) > 0 {
			reassignEntry, err := s.auditSvc.LogAction(txCtx, actor, models.ActionItemsReassigned, id.String(), &models.ItemsReassignedDetails{
				FromProductTypeID: id,
				ToProductTypeID:   replacementID,
				IMEIs:             imeis,
			})
			if err != nil {
				return err
			}
			reassignLogID = &reassignEntry.ID
		}

		if err := s.typesRepo.Delete(txCtx, id); err != nil {
			return err
		}

		_, err = s.auditSvc.LogAction(txCtx, actor, models.ActionProductTypeDeleted, id.String(), &models.ProductTypeDeletedDetails{
			ProductTypeID:     id,
			Brand:             productType.Brand,
			Model:             productType.Model,
			ReassignedItemsTo: &replacementID,
			ReassignLogID:     reassignLogID,
		})
		return err
	})
}

func (s *catalogService) CreateLocation(ctx context.Context, actor *models.Actor, location *models.Location) error {
	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return fmt.Errorf("location name is required")
	}
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	return s.locationsRepo.Create(ctx, location)
}

func (s *catalogService) GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	return s.locationsRepo.GetByID(ctx, id)
}

func (s *catalogService) UpdateLocation(ctx context.Context, actor *models.Actor, location *models.Location) error {
	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return fmt.Errorf("location name is required")
	}
	return s.locationsRepo.Update(ctx, location)
}

func (s *catalogService) ListLocations(ctx context.Context) ([]*models.Location, error) {
	return s.locationsRepo.List(ctx, 500, 0)
}
