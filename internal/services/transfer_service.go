package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"imeitrack/internal/caching"
	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/repositories"

	"github.com/google/uuid"
)

// Confirmation stages accepted by Confirm.
const (
	StageAdmin       = "admin"
	StageDestination = "destination"
)

type TransferService interface {
	// Create allocates the next folio, snapshots every unit's current
	// location and moves the units to the target immediately. Correctness
	// is recovered through the confirmation chain, or through rollback on
	// cancellation.
	Create(ctx context.Context, actor *models.Actor, imeis []string, targetLocationID uuid.UUID) (*models.Transfer, error)

	// Confirm applies one confirmation stage. Admin must confirm before
	// the destination agent; the ordering is a hard invariant.
	Confirm(ctx context.Context, actor *models.Actor, transferID uuid.UUID, stage string) (*models.Transfer, error)

	// Cancel rolls every unit back to its creation-time location and
	// moves the transfer to its terminal cancelled state.
	Cancel(ctx context.Context, actor *models.Actor, transferID uuid.UUID) (*models.Transfer, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	List(ctx context.Context, filters *models.TransferFilters) ([]*models.Transfer, error)
}

type transferService struct {
	txManager     repositories.TxManager
	transfersRepo repositories.TransfersRepository
	unitsRepo     repositories.UnitsRepository
	typesRepo     repositories.ProductTypesRepository
	locationsRepo repositories.LocationsRepository
	auditSvc      AuditLogsService
	archiveSvc    ArchiveService
	cacheService  caching.CacheService
	now           func() time.Time
}

func NewTransferService(
	txManager repositories.TxManager,
	transfersRepo repositories.TransfersRepository,
	unitsRepo repositories.UnitsRepository,
	typesRepo repositories.ProductTypesRepository,
	locationsRepo repositories.LocationsRepository,
	auditSvc AuditLogsService,
	archiveSvc ArchiveService,
	cacheService caching.CacheService,
) TransferService {
	return &transferService{
		txManager:     txManager,
		transfersRepo: transfersRepo,
		unitsRepo:     unitsRepo,
		typesRepo:     typesRepo,
		locationsRepo: locationsRepo,
		auditSvc:      auditSvc,
		archiveSvc:    archiveSvc,
		cacheService:  cacheService,
		now:           time.Now,
	}
}

func (s *transferService) Create(ctx context.Context, actor *models.Actor, imeis []string, targetLocationID uuid.UUID) (*models.Transfer, error) {
	if len(imeis) == 0 {
		return nil, fmt.Errorf("at least one unit is required")
	}
	seen := make(map[string]bool, len(imeis))
	deduped := make([]string, 0, len(imeis))
	for _, imei := range imeis {
		if !seen[imei] {
			seen[imei] = true
			deduped = append(deduped, imei)
		}
	}

	var transfer *models.Transfer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		target, err := s.locationsRepo.GetByID(txCtx, targetLocationID)
		if err != nil {
			return err
		}

		units, err := s.unitsRepo.GetByIMEIs(txCtx, deduped)
		if err != nil {
			return err
		}
		// All-or-nothing: any unknown IMEI rejects the whole batch.
		if len(units) != len(deduped) {
			found := make(map[string]bool, len(units))
			for _, u := range units {
				found[u.IMEI] = true
			}
			for _, imei := range deduped {
				if !found[imei] {
					return fmt.Errorf("unit %s: %w", imei, common.ErrNotFound)
				}
			}
		}

		snapshots, originNames, err := s.snapshotUnits(txCtx, units)
		if err != nil {
			return err
		}

		folio, err := s.transfersRepo.NextFolio(txCtx)
		if err != nil {
			return err
		}

		if _, err := s.unitsRepo.UpdateLocations(txCtx, deduped, targetLocationID); err != nil {
			return fmt.Errorf("failed to relocate units: %w", err)
		}

		transfer = &models.Transfer{
			ID:               uuid.New(),
			Folio:            folio,
			TargetLocationID: targetLocationID,
			InitiatedBy:      actor.Name,
			State:            models.TransferPendingAdmin,
			Units:            snapshots,
		}
		transfer.ReportText = RenderTransferReport(ReportInput{
			Folio:              transfer.FolioString(),
			TargetLocationName: target.Name,
			InitiatedBy:        transfer.InitiatedBy,
			State:              transfer.State,
			Units:              snapshots,
			OriginNames:        originNames,
			GeneratedAt:        s.now(),
		})

		if err := s.transfersRepo.Create(txCtx, transfer); err != nil {
			return err
		}

		_, err = s.auditSvc.LogAction(txCtx, actor, models.ActionItemsTransferred, transfer.ID.String(), &models.ItemsTransferredDetails{
			TransferID:       transfer.ID,
			Folio:            transfer.FolioString(),
			TargetLocationID: targetLocationID,
			Units:            snapshots,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateUnitCaches(ctx, deduped)
	return transfer, nil
}

func (s *transferService) Confirm(ctx context.Context, actor *models.Actor, transferID uuid.UUID, stage string) (*models.Transfer, error) {
	switch stage {
	case StageAdmin:
		return s.confirmAdmin(ctx, actor, transferID)
	case StageDestination:
		return s.confirmDestination(ctx, actor, transferID)
	}
	return nil, fmt.Errorf("unknown confirmation stage %q", stage)
}

func (s *transferService) confirmAdmin(ctx context.Context, actor *models.Actor, transferID uuid.UUID) (*models.Transfer, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("admin confirmation requires administrator role: %w", common.ErrInvalidRole)
	}

	var transfer *models.Transfer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.transfersRepo.GetByID(txCtx, transferID)
		if err != nil {
			return err
		}
		if t.State != models.TransferPendingAdmin || t.AdminConfirmation != nil {
			return fmt.Errorf("transfer %s is in state %s: %w", t.FolioString(), t.State, common.ErrInvalidState)
		}

		t.AdminConfirmation = &models.Confirmation{By: actor.Name, At: s.now()}
		t.State = models.TransferPendingDestination
		if err := s.rerenderReport(txCtx, t); err != nil {
			return err
		}

		ok, err := s.transfersRepo.UpdateStateCAS(txCtx, t, models.TransferPendingAdmin)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transfer %s was modified concurrently: %w", t.FolioString(), common.ErrInvalidState)
		}

		if _, err := s.auditSvc.LogAction(txCtx, actor, models.ActionTransferConfirmed, t.ID.String(), &models.TransferConfirmedDetails{
			TransferID: t.ID,
			Folio:      t.FolioString(),
			Stage:      StageAdmin,
			NewState:   string(t.State),
		}); err != nil {
			return err
		}
		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTransferCache(ctx, transfer)
	return transfer, nil
}

func (s *transferService) confirmDestination(ctx context.Context, actor *models.Actor, transferID uuid.UUID) (*models.Transfer, error) {
	var transfer *models.Transfer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.transfersRepo.GetByID(txCtx, transferID)
		if err != nil {
			return err
		}
		if actor.LocationID == nil || *actor.LocationID != t.TargetLocationID {
			return fmt.Errorf("confirmer is not assigned to the target location of %s: %w", t.FolioString(), common.ErrWrongLocation)
		}
		if t.State != models.TransferPendingDestination {
			return fmt.Errorf("transfer %s is in state %s, admin must confirm first: %w", t.FolioString(), t.State, common.ErrInvalidState)
		}

		t.DestinationConfirmation = &models.Confirmation{By: actor.Name, At: s.now()}
		t.State = models.TransferCompleted
		if err := s.rerenderReport(txCtx, t); err != nil {
			return err
		}

		ok, err := s.transfersRepo.UpdateStateCAS(txCtx, t, models.TransferPendingDestination)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transfer %s was modified concurrently: %w", t.FolioString(), common.ErrInvalidState)
		}

		if _, err := s.auditSvc.LogAction(txCtx, actor, models.ActionTransferConfirmed, t.ID.String(), &models.TransferConfirmedDetails{
			TransferID: t.ID,
			Folio:      t.FolioString(),
			Stage:      StageDestination,
			NewState:   string(t.State),
		}); err != nil {
			return err
		}
		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Completed transfers get their report archived; failures only log.
	if s.archiveSvc != nil {
		if _, err := s.archiveSvc.ArchiveTransferReport(ctx, transfer); err != nil {
			log.Printf("Failed to archive report for %s: %v", transfer.FolioString(), err)
		}
	}

	s.invalidateTransferCache(ctx, transfer)
	return transfer, nil
}

func (s *transferService) Cancel(ctx context.Context, actor *models.Actor, transferID uuid.UUID) (*models.Transfer, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("cancellation requires administrator role: %w", common.ErrInvalidRole)
	}

	var transfer *models.Transfer
	var imeis []string
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.transfersRepo.GetByID(txCtx, transferID)
		if err != nil {
			return err
		}
		if t.State.Terminal() {
			return fmt.Errorf("transfer %s is already %s: %w", t.FolioString(), t.State, common.ErrInvalidState)
		}
		previousState := t.State

		// Rollback: restore every unit to its creation-time location.
		for _, snapshot := range t.Units {
			if err := s.unitsRepo.UpdateLocation(txCtx, snapshot.IMEI, snapshot.OriginalLocationID); err != nil {
				return fmt.Errorf("failed to restore %s: %w", snapshot.IMEI, err)
			}
			imeis = append(imeis, snapshot.IMEI)
		}

		t.Cancellation = &models.Confirmation{By: actor.Name, At: s.now()}
		t.State = models.TransferCancelled
		if err := s.rerenderReport(txCtx, t); err != nil {
			return err
		}

		ok, err := s.transfersRepo.UpdateStateCAS(txCtx, t, previousState)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transfer %s was modified concurrently: %w", t.FolioString(), common.ErrInvalidState)
		}

		if _, err := s.auditSvc.LogAction(txCtx, actor, models.ActionTransferCancelled, t.ID.String(), &models.TransferCancelledDetails{
			TransferID:    t.ID,
			Folio:         t.FolioString(),
			RestoredUnits: t.Units,
		}); err != nil {
			return err
		}
		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateUnitCaches(ctx, imeis)
	s.invalidateTransferCache(ctx, transfer)
	return transfer, nil
}

func (s *transferService) GetByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	if cached, err := s.cacheService.GetTransfer(ctx, id.String()); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for transfer %s: %v", id, err)
	}

	transfer, err := s.transfersRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetTransfer(ctx, transfer, 2*time.Minute); cacheErr != nil {
		log.Printf("Failed to cache transfer %s: %v", id, cacheErr)
	}
	return transfer, nil
}

func (s *transferService) List(ctx context.Context, filters *models.TransferFilters) ([]*models.Transfer, error) {
	return s.transfersRepo.List(ctx, filters)
}

// snapshotUnits builds creation-time snapshots and the origin-name lookup the
// report renderer needs.
func (s *transferService) snapshotUnits(ctx context.Context, units []*models.InventoryUnit) ([]models.UnitSnapshot, map[uuid.UUID]string, error) {
	typeNames := make(map[uuid.UUID]string)
	originNames := make(map[uuid.UUID]string)
	snapshots := make([]models.UnitSnapshot, 0, len(units))

	for _, unit := range units {
		name, ok := typeNames[unit.ProductTypeID]
		if !ok {
			productType, err := s.typesRepo.GetByID(ctx, unit.ProductTypeID)
			if err != nil {
				return nil, nil, err
			}
			name = productType.Name()
			typeNames[unit.ProductTypeID] = name
		}
		if _, ok := originNames[unit.LocationID]; !ok {
			location, err := s.locationsRepo.GetByID(ctx, unit.LocationID)
			if err != nil {
				return nil, nil, err
			}
			originNames[unit.LocationID] = location.Name
		}
		snapshots = append(snapshots, models.UnitSnapshot{
			IMEI:               unit.IMEI,
			ProductName:        name,
			OriginalLocationID: unit.LocationID,
		})
	}
	return snapshots, originNames, nil
}

// rerenderReport recomputes the report text from the transfer's current
// state. It is always a full recompute, never a patch.
func (s *transferService) rerenderReport(ctx context.Context, t *models.Transfer) error {
	target, err := s.locationsRepo.GetByID(ctx, t.TargetLocationID)
	if err != nil {
		return err
	}
	originNames := make(map[uuid.UUID]string)
	for _, snapshot := range t.Units {
		if _, ok := originNames[snapshot.OriginalLocationID]; ok {
			continue
		}
		location, err := s.locationsRepo.GetByID(ctx, snapshot.OriginalLocationID)
		if err != nil {
			// Origin may have been renamed or removed since creation;
			// the renderer falls back to the raw id.
			continue
		}
		originNames[snapshot.OriginalLocationID] = location.Name
	}

	t.ReportText = RenderTransferReport(ReportInput{
		Folio:                   t.FolioString(),
		TargetLocationName:      target.Name,
		InitiatedBy:             t.InitiatedBy,
		State:                   t.State,
		Units:                   t.Units,
		OriginNames:             originNames,
		AdminConfirmation:       t.AdminConfirmation,
		DestinationConfirmation: t.DestinationConfirmation,
		Cancellation:            t.Cancellation,
		GeneratedAt:             s.now(),
	})
	return nil
}

func (s *transferService) invalidateUnitCaches(ctx context.Context, imeis []string) {
	if err := s.cacheService.DeleteUnits(ctx, imeis); err != nil {
		log.Printf("Failed to invalidate unit caches: %v", err)
	}
}

func (s *transferService) invalidateTransferCache(ctx context.Context, transfer *models.Transfer) {
	if transfer == nil {
		return
	}
	if err := s.cacheService.DeleteTransfer(ctx, transfer.ID.String()); err != nil {
		log.Printf("Failed to invalidate transfer cache for %s: %v", transfer.FolioString(), err)
	}
}
