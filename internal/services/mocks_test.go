package services

import (
	"context"
	"time"

	"imeitrack/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// passthroughTxManager runs the function directly so service logic can be
// tested without a live database.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type MockUnitsRepo struct {
	mock.Mock
}

func (m *MockUnitsRepo) Create(ctx context.Context, unit *models.InventoryUnit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitsRepo) GetByIMEI(ctx context.Context, imei string) (*models.InventoryUnit, error) {
	args := m.Called(ctx, imei)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryUnit), args.Error(1)
}

func (m *MockUnitsRepo) GetByIMEIs(ctx context.Context, imeis []string) ([]*models.InventoryUnit, error) {
	args := m.Called(ctx, imeis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryUnit), args.Error(1)
}

func (m *MockUnitsRepo) DeleteByIMEIs(ctx context.Context, imeis []string) (int64, error) {
	args := m.Called(ctx, imeis)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnitsRepo) List(ctx context.Context, limit, offset int) ([]*models.InventoryUnit, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryUnit), args.Error(1)
}

func (m *MockUnitsRepo) ListByProductType(ctx context.Context, productTypeID uuid.UUID) ([]*models.InventoryUnit, error) {
	args := m.Called(ctx, productTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryUnit), args.Error(1)
}

func (m *MockUnitsRepo) UpdateLocations(ctx context.Context, imeis []string, locationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, imeis, locationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnitsRepo) UpdateLocation(ctx context.Context, imei string, locationID uuid.UUID) error {
	args := m.Called(ctx, imei, locationID)
	return args.Error(0)
}

func (m *MockUnitsRepo) UpdateStatuses(ctx context.Context, imeis []string, status models.UnitStatus) (int64, error) {
	args := m.Called(ctx, imeis, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnitsRepo) ReassignProductType(ctx context.Context, fromTypeID, toTypeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, fromTypeID, toTypeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnitsRepo) AdvancedSearch(ctx context.Context, filter *models.UnitSearchFilter) ([]*models.InventoryUnit, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryUnit), args.Error(1)
}

type MockProductTypesRepo struct {
	mock.Mock
}

func (m *MockProductTypesRepo) Create(ctx context.Context, productType *models.ProductType) error {
	args := m.Called(ctx, productType)
	return args.Error(0)
}

func (m *MockProductTypesRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductType), args.Error(1)
}

func (m *MockProductTypesRepo) Update(ctx context.Context, productType *models.ProductType) error {
	args := m.Called(ctx, productType)
	return args.Error(0)
}

func (m *MockProductTypesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductTypesRepo) List(ctx context.Context, limit, offset int) ([]*models.ProductType, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProductType), args.Error(1)
}

func (m *MockProductTypesRepo) ListExcept(ctx context.Context, excludeID uuid.UUID) ([]*models.ProductType, error) {
	args := m.Called(ctx, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProductType), args.Error(1)
}

type MockLocationsRepo struct {
	mock.Mock
}

func (m *MockLocationsRepo) Create(ctx context.Context, location *models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationsRepo) Update(ctx context.Context, location *models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationsRepo) List(ctx context.Context, limit, offset int) ([]*models.Location, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Location), args.Error(1)
}

type MockTransfersRepo struct {
	mock.Mock
}

func (m *MockTransfersRepo) NextFolio(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransfersRepo) Create(ctx context.Context, transfer *models.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransfersRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransfersRepo) List(ctx context.Context, filters *models.TransferFilters) ([]*models.Transfer, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transfer), args.Error(1)
}

func (m *MockTransfersRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transfer, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transfer), args.Error(1)
}

func (m *MockTransfersRepo) UpdateStateCAS(ctx context.Context, transfer *models.Transfer, expectedState models.TransferState) (bool, error) {
	args := m.Called(ctx, transfer, expectedState)
	return args.Bool(0), args.Error(1)
}

type MockAuditLogsService struct {
	mock.Mock
}

func (m *MockAuditLogsService) LogAction(ctx context.Context, actor *models.Actor, action, recordID string, details any) (*models.AuditLog, error) {
	args := m.Called(ctx, actor, action, recordID, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsService) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsService) GetRecordHistory(ctx context.Context, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, recordID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetUnit(ctx context.Context, imei string) (*models.InventoryUnit, error) {
	args := m.Called(ctx, imei)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryUnit), args.Error(1)
}

func (m *MockCacheService) SetUnit(ctx context.Context, unit *models.InventoryUnit, ttl time.Duration) error {
	args := m.Called(ctx, unit, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteUnit(ctx context.Context, imei string) error {
	args := m.Called(ctx, imei)
	return args.Error(0)
}

func (m *MockCacheService) DeleteUnits(ctx context.Context, imeis []string) error {
	args := m.Called(ctx, imeis)
	return args.Error(0)
}

func (m *MockCacheService) GetTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockCacheService) SetTransfer(ctx context.Context, transfer *models.Transfer, ttl time.Duration) error {
	args := m.Called(ctx, transfer, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteTransfer(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCacheService) StoreReauthToken(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	args := m.Called(ctx, userID, tokenHash, ttl)
	return args.Error(0)
}

func (m *MockCacheService) ConsumeReauthToken(ctx context.Context, userID, tokenHash string) (bool, error) {
	args := m.Called(ctx, userID, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockUsersRepo struct {
	mock.Mock
}

func (m *MockUsersRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsersRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
