package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"imeitrack/internal/caching"
	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/repositories"

	"github.com/google/uuid"
)

// UnitImportRecord is one row of a restore/import payload.
type UnitImportRecord struct {
	IMEI          string            `json:"imei"`
	IMEI2         *string           `json:"imei2,omitempty"`
	ProductTypeID uuid.UUID         `json:"product_type_id"`
	LocationID    uuid.UUID         `json:"location_id"`
	Status        models.UnitStatus `json:"status"`
	Memory        *string           `json:"memory,omitempty"`
	Color         *string           `json:"color,omitempty"`
	Supplier      *string           `json:"supplier,omitempty"`
	PurchasePrice *float64          `json:"purchase_price,omitempty"`
}

type UnitService interface {
	Register(ctx context.Context, actor *models.Actor, unit *models.InventoryUnit) error
	GetByIMEI(ctx context.Context, imei string) (*models.InventoryUnit, error)
	List(ctx context.Context, limit, offset int) ([]*models.InventoryUnit, error)
	Search(ctx context.Context, filter *models.UnitSearchFilter) ([]*models.InventoryUnit, error)

	// ChangeStatus applies one status to a batch of units, all or
	// nothing. Marking units Lost additionally requires a fresh re-auth
	// token from AuthService.Reauthenticate; the token is single-use.
	ChangeStatus(ctx context.Context, actor *models.Actor, imeis []string, newStatus models.UnitStatus, reauthToken string) ([]models.StatusChange, error)

	// BulkDelete removes units permanently. The full unit records are
	// written to the audit log before the rows go away.
	BulkDelete(ctx context.Context, actor *models.Actor, imeis []string) error

	// Import is the one bulk path that skips bad records instead of
	// rejecting the whole batch.
	Import(ctx context.Context, actor *models.Actor, records []UnitImportRecord) (*models.ImportResult, error)
}

type unitService struct {
	txManager    repositories.TxManager
	unitsRepo    repositories.UnitsRepository
	typesRepo    repositories.ProductTypesRepository
	auditSvc     AuditLogsService
	archiveSvc   ArchiveService
	cacheService caching.CacheService
}

func NewUnitService(
	txManager repositories.TxManager,
	unitsRepo repositories.UnitsRepository,
	typesRepo repositories.ProductTypesRepository,
	auditSvc AuditLogsService,
	archiveSvc ArchiveService,
	cacheService caching.CacheService,
) UnitService {
	return &unitService{
		txManager:    txManager,
		unitsRepo:    unitsRepo,
		typesRepo:    typesRepo,
		auditSvc:     auditSvc,
		archiveSvc:   archiveSvc,
		cacheService: cacheService,
	}
}

func (s *unitService) Register(ctx context.Context, actor *models.Actor, unit *models.InventoryUnit) error {
	if err := common.ValidateIMEI(unit.IMEI); err != nil {
		return err
	}
	if unit.Status == "" {
		unit.Status = models.StatusNew
	}
	if !unit.Status.Valid() {
		return fmt.Errorf("invalid status %q", unit.Status)
	}
	if _, err := s.typesRepo.GetByID(ctx, unit.ProductTypeID); err != nil {
		return fmt.Errorf("product type: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.unitsRepo.Create(txCtx, unit); err != nil {
			return err
		}
		_, err := s.auditSvc.LogAction(txCtx, actor, models.ActionUnitRegistered, unit.IMEI, &models.UnitRegisteredDetails{
			IMEI:          unit.IMEI,
			ProductTypeID: unit.ProductTypeID,
			LocationID:    unit.LocationID,
		})
		return err
	})
}

func (s *unitService) GetByIMEI(ctx context.Context, imei string) (*models.InventoryUnit, error) {
	if cached, err := s.cacheService.GetUnit(ctx, imei); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for unit %s: %v", imei, err)
	}

	unit, err := s.unitsRepo.GetByIMEI(ctx, imei)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetUnit(ctx, unit, 5*time.Minute); cacheErr != nil {
		log.Printf("Failed to cache unit %s: %v", imei, cacheErr)
	}
	return unit, nil
}

func (s *unitService) List(ctx context.Context, limit, offset int) ([]*models.InventoryUnit, error) {
	return s.unitsRepo.List(ctx, limit, offset)
}

func (s *unitService) Search(ctx context.Context, filter *models.UnitSearchFilter) ([]*models.InventoryUnit, error) {
	if filter == nil {
		filter = &models.UnitSearchFilter{}
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	return s.unitsRepo.AdvancedSearch(ctx, filter)
}

func (s *unitService) ChangeStatus(ctx context.Context, actor *models.Actor, imeis []string, newStatus models.UnitStatus, reauthToken string) ([]models.StatusChange, error) {
	if len(imeis) == 0 {
		return nil, fmt.Errorf("at least one unit is required")
	}
	if !newStatus.Valid() {
		return nil, fmt.Errorf("invalid status %q", newStatus)
	}

	// Lost is a destructive state; the session token alone is not enough.
	// Only an administrator may mark units lost, and they must re-prove
	// their password for this specific batch.
	if newStatus == models.StatusLost {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("marking units lost requires administrator role: %w", common.ErrInvalidRole)
		}
		if reauthToken == "" {
			return nil, fmt.Errorf("marking units lost requires password re-authentication: %w", common.ErrReauthRequired)
		}
	}

	var changes []models.StatusChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		units, err := s.unitsRepo.GetByIMEIs(txCtx, imeis)
		if err != nil {
			return err
		}
		if len(units) != len(imeis) {
			found := make(map[string]bool, len(units))
			for _, u := range units {
				found[u.IMEI] = true
			}
			for _, imei := range imeis {
				if !found[imei] {
					return fmt.Errorf("unit %s: %w", imei, common.ErrNotFound)
				}
			}
		}

		// The single-use token is spent only after the batch has resolved,
		// so a mistyped IMEI list does not burn it.
		if newStatus == models.StatusLost {
			ok, err := s.cacheService.ConsumeReauthToken(txCtx, actor.ID.String(), HashReauthToken(reauthToken))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("re-auth token is invalid, expired or already used: %w", common.ErrReauthRequired)
			}
		}

		changes = make([]models.StatusChange, 0, len(units))
		for _, unit := range units {
			changes = append(changes, models.StatusChange{
				IMEI:      unit.IMEI,
				OldStatus: unit.Status,
				NewStatus: newStatus,
			})
		}

		if _, err := s.unitsRepo.UpdateStatuses(txCtx, imeis, newStatus); err != nil {
			return err
		}

		_, err = s.auditSvc.LogAction(txCtx, actor, models.ActionItemsStatusChanged, "", &models.ItemsStatusChangedDetails{
			Changes: changes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.DeleteUnits(ctx, imeis); cacheErr != nil {
		log.Printf("Failed to invalidate unit caches: %v", cacheErr)
	}
	return changes, nil
}

func (s *unitService) BulkDelete(ctx context.Context, actor *models.Actor, imeis []string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("bulk deletion requires administrator role: %w", common.ErrInvalidRole)
	}
	if len(imeis) == 0 {
		return fmt.Errorf("at least one unit is required")
	}

	units, err := s.unitsRepo.GetByIMEIs(ctx, imeis)
	if err != nil {
		return err
	}
	if len(units) != len(imeis) {
		found := make(map[string]bool, len(units))
		for _, u := range units {
			found[u.IMEI] = true
		}
		for _, imei := range imeis {
			if !found[imei] {
				return fmt.Errorf("unit %s: %w", imei, common.ErrNotFound)
			}
		}
	}

	// Snapshot the rows to object storage before they disappear. Archive
	// failure does not block the delete; the audit entry still carries
	// the full records.
	var archiveName *string
	if s.archiveSvc != nil {
		name, archiveErr := s.archiveSvc.ArchiveUnitSnapshot(ctx, units)
		if archiveErr != nil {
			log.Printf("Failed to archive unit snapshot: %v", archiveErr)
		} else {
			archiveName = &name
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.unitsRepo.DeleteByIMEIs(txCtx, imeis); err != nil {
			return err
		}
		_, err := s.auditSvc.LogAction(txCtx, actor, models.ActionUnitsDeleted, "", &models.UnitsDeletedDetails{
			Units:       units,
			ArchiveName: archiveName,
		})
		return err
	})
	if err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteUnits(ctx, imeis); cacheErr != nil {
		log.Printf("Failed to invalidate unit caches: %v", cacheErr)
	}
	return nil
}

func (s *unitService) Import(ctx context.Context, actor *models.Actor, records []UnitImportRecord) (*models.ImportResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to import")
	}

	result := &models.ImportResult{}
	var imported []string

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		knownTypes := make(map[uuid.UUID]bool)
		for _, record := range records {
			if err := common.ValidateIMEI(record.IMEI); err != nil {
				result.Skipped++
				result.Reasons = append(result.Reasons, fmt.Sprintf("%s: invalid IMEI", record.IMEI))
				continue
			}
			status := record.Status
			if status == "" {
				status = models.StatusNew
			}
			if !status.Valid() {
				result.Skipped++
				result.Reasons = append(result.Reasons, fmt.Sprintf("%s: invalid status %q", record.IMEI, record.Status))
				continue
			}
			if !knownTypes[record.ProductTypeID] {
				if _, err := s.typesRepo.GetByID(txCtx, record.ProductTypeID); err != nil {
					result.Skipped++
					result.Reasons = append(result.Reasons, fmt.Sprintf("%s: unknown product type %s", record.IMEI, record.ProductTypeID))
					continue
				}
				knownTypes[record.ProductTypeID] = true
			}

			// Existence is checked up front because a unique violation
			// would abort the surrounding transaction.
			if existing, err := s.unitsRepo.GetByIMEI(txCtx, record.IMEI); err == nil && existing != nil {
				result.Skipped++
				result.Reasons = append(result.Reasons, fmt.Sprintf("%s: already registered", record.IMEI))
				continue
			} else if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}

			unit := &models.InventoryUnit{
				IMEI:          record.IMEI,
				IMEI2:         record.IMEI2,
				ProductTypeID: record.ProductTypeID,
				LocationID:    record.LocationID,
				Status:        status,
				Memory:        record.Memory,
				Color:         record.Color,
				Supplier:      record.Supplier,
				PurchasePrice: record.PurchasePrice,
			}
			if err := s.unitsRepo.Create(txCtx, unit); err != nil {
				return err
			}
			result.Imported++
			imported = append(imported, record.IMEI)
		}

		_, err := s.auditSvc.LogAction(txCtx, actor, models.ActionUnitsImported, "", &models.UnitsImportedDetails{
			Imported: result.Imported,
			Skipped:  result.Skipped,
			Reasons:  result.Reasons,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(imported) > 0 {
		if cacheErr := s.cacheService.DeleteUnits(ctx, imported); cacheErr != nil {
			log.Printf("Failed to invalidate unit caches: %v", cacheErr)
		}
	}
	return result, nil
}
