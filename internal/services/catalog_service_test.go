package services

import (
	"context"
	"testing"

	"imeitrack/internal/common"
	"imeitrack/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	typesRepo     *MockProductTypesRepo
	locationsRepo *MockLocationsRepo
	unitsRepo     *MockUnitsRepo
	auditSvc      *MockAuditLogsService
	svc           CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		typesRepo:     new(MockProductTypesRepo),
		locationsRepo: new(MockLocationsRepo),
		unitsRepo:     new(MockUnitsRepo),
		auditSvc:      new(MockAuditLogsService),
	}
	f.svc = NewCatalogService(passthroughTxManager{}, f.typesRepo, f.locationsRepo, f.unitsRepo, f.auditSvc)
	return f
}

func TestDeleteProductTypeNoDependents(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	actor := adminActor()

	typeID := uuid.New()
	f.typesRepo.On("GetByID", mock.Anything, typeID).Return(&models.ProductType{ID: typeID, Brand: "Apple", Model: "iPhone 15"}, nil)
	f.unitsRepo.On("ListByProductType", mock.Anything, typeID).Return([]*models.InventoryUnit{}, nil)
	f.typesRepo.On("Delete", mock.Anything, typeID).Return(nil)
	f.auditSvc.On("LogAction", mock.Anything, actor, models.ActionProductTypeDeleted, typeID.String(), mock.Anything).Return(&models.AuditLog{}, nil)

	plan, err := f.svc.DeleteProductType(ctx, actor, typeID)
	require.NoError(t, err)
	assert.True(t, plan.Deleted)
	assert.False(t, plan.Blocked)
	f.typesRepo.AssertExpectations(t)
}

func TestDeleteProductTypeBlockedWithoutCandidates(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	actor := adminActor()

	typeID := uuid.New()
	dependents := []*models.InventoryUnit{{IMEI: "356938035643809", ProductTypeID: typeID}}

	f.typesRepo.On("GetByID", mock.Anything, typeID).Return(&models.ProductType{ID: typeID, Brand: "Apple", Model: "iPhone 15"}, nil)
	f.unitsRepo.On("ListByProductType", mock.Anything, typeID).Return(dependents, nil)
	f.typesRepo.On("ListExcept", mock.Anything, typeID).Return([]*models.ProductType{}, nil)

	plan, err := f.svc.DeleteProductType(ctx, actor, typeID)
	assert.ErrorIs(t, err, common.ErrDeletionBlocked)
	require.NotNil(t, plan)
	assert.True(t, plan.Blocked)
	assert.Len(t, plan.AffectedUnits, 1)
	f.typesRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteProductTypeReturnsCandidatePlan(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	actor := adminActor()

	typeID := uuid.New()
	otherID := uuid.New()
	dependents := []*models.InventoryUnit{{IMEI: "356938035643809", ProductTypeID: typeID}}
	candidates := []*models.ProductType{{ID: otherID, Brand: "Samsung", Model: "Galaxy S24"}}

	f.typesRepo.On("GetByID", mock.Anything, typeID).Return(&models.ProductType{ID: typeID, Brand: "Apple", Model: "iPhone 15"}, nil)
	f.unitsRepo.On("ListByProductType", mock.Anything, typeID).Return(dependents, nil)
	f.typesRepo.On("ListExcept", mock.Anything, typeID).Return(candidates, nil)

	plan, err := f.svc.DeleteProductType(ctx, actor, typeID)
	require.NoError(t, err)
	assert.False(t, plan.Deleted)
	assert.False(t, plan.Blocked)
	assert.Equal(t, candidates, plan.Candidates)
	assert.Equal(t, dependents, plan.AffectedUnits)
	// Nothing is deleted until the caller confirms a replacement.
	f.typesRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteProductTypeRequiresAdmin(t *testing.T) {
	f := newCatalogFixture()
	actor := agentActor(uuid.New())

	_, err := f.svc.DeleteProductType(context.Background(), actor, uuid.New())
	assert.ErrorIs(t, err, common.ErrInvalidRole)
}

func TestReassignAndDeleteWritesLinkedAuditEntries(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	actor := adminActor()

	typeID := uuid.New()
	replacementID := uuid.New()
	reassignLogID := uuid.New()
	dependents := []*models.InventoryUnit{
		{IMEI: "356938035643809", ProductTypeID: typeID},
		{IMEI: "490154203237518", ProductTypeID: typeID},
	}

	f.typesRepo.On("GetByID", mock.Anything, typeID).Return(&models.ProductType{ID: typeID, Brand: "Apple", Model: "iPhone 15"}, nil)
	f.typesRepo.On("GetByID", mock.Anything, replacementID).Return(&models.ProductType{ID: replacementID, Brand: "Apple", Model: "iPhone 15 Pro"}, nil)
	f.unitsRepo.On("ListByProductType", mock.Anything, typeID).Return(dependents, nil)
	f.unitsRepo.On("ReassignProductType", mock.Anything, typeID, replacementID).Return(int64(2), nil)

	f.auditSvc.On("LogAction", mock.Anything, actor, models.ActionItemsReassigned, typeID.String(), mock.MatchedBy(func(details any) bool {
		d, ok := details.(*models.ItemsReassignedDetails)
		return ok && d.ToProductTypeID == replacementID && len(d.IMEIs) == 2
	})).Return(&models.AuditLog{ID: reassignLogID}, nil)

	f.typesRepo.On("Delete", mock.Anything, typeID).Return(nil)

	f.auditSvc.On("LogAction", mock.Anything, actor, models.ActionProductTypeDeleted, typeID.String(), mock.MatchedBy(func(details any) bool {
		d, ok := details.(*models.ProductTypeDeletedDetails)
		return ok && d.ReassignedItemsTo != nil && *d.ReassignedItemsTo == replacementID &&
			d.ReassignLogID != nil && *d.ReassignLogID == reassignLogID
	})).Return(&models.AuditLog{}, nil)

	err := f.svc.ReassignAndDelete(ctx, actor, typeID, replacementID)
	require.NoError(t, err)
	f.auditSvc.AssertExpectations(t)
	f.typesRepo.AssertExpectations(t)
}

func TestReassignAndDeleteRejectsSelfReplacement(t *testing.T) {
	f := newCatalogFixture()
	actor := adminActor()
	typeID := uuid.New()

	err := f.svc.ReassignAndDelete(context.Background(), actor, typeID, typeID)
	require.Error(t, err)
	f.unitsRepo.AssertNotCalled(t, "ReassignProductType", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProductTypeValidation(t *testing.T) {
	f := newCatalogFixture()
	actor := adminActor()

	err := f.svc.CreateProductType(context.Background(), actor, &models.ProductType{Brand: " ", Model: "iPhone 15"})
	require.Error(t, err)

	f.typesRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.ProductType")).Return(nil)
	productType := &models.ProductType{Brand: "Apple", Model: "iPhone 15"}
	require.NoError(t, f.svc.CreateProductType(context.Background(), actor, productType))
	assert.NotEqual(t, uuid.Nil, productType.ID)
}
