package inventory_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chimbuka/mabuku/core/inventory"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/cache"
	"github.com/chimbuka/mabuku/pkg/log"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockRepository) FindItems(ctx context.Context, filter *domain.ListInventoryItemsFilter) ([]*domain.InventoryItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InventoryItem), args.Error(1)
}

func (m *mockRepository) GetItemByID(ctx context.Context, orgID, id string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *mockRepository) GetItemBySKU(ctx context.Context, orgID, sku string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, orgID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *mockRepository) UpdateItem(ctx context.Context, item *domain.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockRepository) AdjustQuantity(ctx context.Context, orgID, itemID string, delta int64) error {
	return m.Called(ctx, orgID, itemID, delta).Error(0)
}

func (m *mockRepository) CreateMovement(ctx context.Context, movement *domain.StockMovement) error {
	return m.Called(ctx, movement).Error(0)
}

func (m *mockRepository) FindMovements(ctx context.Context, filter *domain.ListStockMovementsFilter) ([]*domain.StockMovement, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StockMovement), args.Error(1)
}

func (m *mockRepository) GetMovementByID(ctx context.Context, orgID, id string) (*domain.StockMovement, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockMovement), args.Error(1)
}

func (m *mockRepository) UpdateMovement(ctx context.Context, movement *domain.StockMovement) error {
	return m.Called(ctx, movement).Error(0)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(ctx context.Context, jobType string, payload interface{}) error {
	return m.Called(ctx, jobType, payload).Error(0)
}

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) Log(ctx context.Context, action string, data interface{}) error {
	return m.Called(ctx, action, data).Error(0)
}

type serviceTestHelper struct {
	repo    *mockRepository
	queue   *mockQueue
	service *inventory.Service
}

func newServiceTestHelper() *serviceTestHelper {
	h := &serviceTestHelper{
		repo:  new(mockRepository),
		queue: new(mockQueue),
	}
	auditLogger := new(mockAuditLogger)
	auditLogger.On("Log", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	h.service = inventory.NewService(inventory.ServiceDeps{
		Repository:  h.repo,
		Queue:       h.queue,
		Cache:       cache.New(),
		Validator:   validator.New(),
		Logger:      log.NewNoop(),
		AuditLogger: auditLogger,
	})
	return h
}

const testOrgID = "org-1"

func stockedItem() *domain.InventoryItem {
	return &domain.InventoryItem{
		ID:             "item-1",
		OrganizationID: testOrgID,
		SKU:            "MEALIE-25KG",
		Name:           "Mealie Meal 25kg",
		UnitPrice:      35000,
		QuantityOnHand: 40,
		ReorderLevel:   10,
		IsActive:       true,
	}
}

func pendingMovement(movementType string, quantity int64) *domain.StockMovement {
	return &domain.StockMovement{
		ID:             "movement-1",
		OrganizationID: testOrgID,
		ItemID:         "item-1",
		Type:           movementType,
		Quantity:       quantity,
		Status:         domain.StockMovementStatusPending,
	}
}

func TestServiceCreateItem(t *testing.T) {
	t.Run("should create an item with a free SKU", func(t *testing.T) {
		h := newServiceTestHelper()
		item := stockedItem()
		h.repo.On("GetItemBySKU", mock.Anything, testOrgID, item.SKU).
			Return(nil, inventory.ErrItemNotFound).Once()
		h.repo.On("CreateItem", mock.Anything, item).Return(nil).Once()

		err := h.service.CreateItem(context.Background(), item)

		assert.NoError(t, err)
		h.repo.AssertExpectations(t)
	})

	t.Run("should reject a taken SKU", func(t *testing.T) {
		h := newServiceTestHelper()
		item := stockedItem()
		h.repo.On("GetItemBySKU", mock.Anything, testOrgID, item.SKU).
			Return(&domain.InventoryItem{ID: "item-2", SKU: item.SKU}, nil).Once()

		err := h.service.CreateItem(context.Background(), item)

		assert.ErrorIs(t, err, inventory.ErrDuplicateSKU)
	})

	t.Run("should reject an invalid barcode", func(t *testing.T) {
		h := newServiceTestHelper()
		item := stockedItem()
		item.Barcode = "4006381333932"

		err := h.service.CreateItem(context.Background(), item)

		assert.ErrorIs(t, err, inventory.ErrInvalidBarcode)
	})
}

func TestServiceRecordMovement(t *testing.T) {
	t.Run("should persist the movement and enqueue it", func(t *testing.T) {
		h := newServiceTestHelper()
		movement := pendingMovement(domain.StockMovementTypeIn, 5)
		movement.Status = ""
		h.repo.On("GetItemByID", mock.Anything, testOrgID, "item-1").Return(stockedItem(), nil).Once()
		h.repo.On("CreateMovement", mock.Anything, movement).Return(nil).Once()
		h.queue.On("Enqueue", mock.Anything, inventory.JobTypeApplyMovement, &inventory.ApplyMovementPayload{
			OrganizationID: testOrgID,
			MovementID:     "movement-1",
		}).Return(nil).Once()

		err := h.service.RecordMovement(context.Background(), movement)

		require.NoError(t, err)
		assert.Equal(t, domain.StockMovementStatusPending, movement.Status)
		h.queue.AssertExpectations(t)
	})

	t.Run("should reject non-positive quantities for in and out movements", func(t *testing.T) {
		h := newServiceTestHelper()

		err := h.service.RecordMovement(context.Background(), pendingMovement(domain.StockMovementTypeOut, 0))

		assert.ErrorIs(t, err, inventory.ErrInvalidMovement)
	})

	t.Run("should reject movements against unknown items", func(t *testing.T) {
		h := newServiceTestHelper()
		h.repo.On("GetItemByID", mock.Anything, testOrgID, "item-1").
			Return(nil, inventory.ErrItemNotFound).Once()

		err := h.service.RecordMovement(context.Background(), pendingMovement(domain.StockMovementTypeIn, 5))

		assert.ErrorIs(t, err, inventory.ErrItemNotFound)
	})
}

func TestServiceApplyMovement(t *testing.T) {
	t.Run("should add stock for in movements", func(t *testing.T) {
		h := newServiceTestHelper()
		movement := pendingMovement(domain.StockMovementTypeIn, 5)
		h.repo.On("GetMovementByID", mock.Anything, testOrgID, "movement-1").Return(movement, nil).Once()
		h.repo.On("GetItemByID", mock.Anything, testOrgID, "item-1").Return(stockedItem(), nil).Once()
		h.repo.On("AdjustQuantity", mock.Anything, testOrgID, "item-1", int64(5)).Return(nil).Once()
		h.repo.On("UpdateMovement", mock.Anything, movement).Return(nil).Once()

		err := h.service.ApplyMovement(context.Background(), testOrgID, "movement-1")

		require.NoError(t, err)
		assert.Equal(t, domain.StockMovementStatusApplied, movement.Status)
		assert.NotNil(t, movement.AppliedAt)
	})

	t.Run("should subtract stock for out movements", func(t *testing.T) {
		h := newServiceTestHelper()
		movement := pendingMovement(domain.StockMovementTypeOut, 15)
		h.repo.On("GetMovementByID", mock.Anything, testOrgID, "movement-1").Return(movement, nil).Once()
		h.repo.On("GetItemByID", mock.Anything, testOrgID, "item-1").Return(stockedItem(), nil).Once()
		h.repo.On("AdjustQuantity", mock.Anything, testOrgID, "item-1", int64(-15)).Return(nil).Once()
		h.repo.On("UpdateMovement", mock.Anything, movement).Return(nil).Once()

		err := h.service.ApplyMovement(context.Background(), testOrgID, "movement-1")

		assert.NoError(t, err)
	})

	t.Run("should set the absolute quantity for adjust movements", func(t *testing.T) {
		h := newServiceTestHelper()
		movement := pendingMovement(domain.StockMovementTypeAdjust, 25)
		h.repo.On("GetMovementByID", mock.Anything, testOrgID, "movement-1").Return(movement, nil).Once()
		h.repo.On("GetItemByID", mock.Anything, testOrgID, "item-1").Return(stockedItem(), nil).Once()
		// item holds 40, adjusting to 25 means a delta of -15
		h.repo.On("AdjustQuantity", mock.Anything, testOrgID, "item-1", int64(-15)).Return(nil).Once()
		h.repo.On("UpdateMovement", mock.Anything, movement).Return(nil).Once()

		err := h.service.ApplyMovement(context.Background(), testOrgID, "movement-1")

		assert.NoError(t, err)
	})

	t.Run("should fail the movement when stock would go negative", func(t *testing.T) {
		h := newServiceTestHelper()
		movement := pendingMovement(domain.StockMovementTypeOut, 50)
		h.repo.On("GetMovementByID", mock.Anything, testOrgID, "movement-1").Return(movement, nil).Once()
		h.repo.On("GetItemByID", mock.Anything, testOrgID, "item-1").Return(stockedItem(), nil).Once()
		h.repo.On("UpdateMovement", mock.Anything, movement).Return(nil).Once()

		err := h.service.ApplyMovement(context.Background(), testOrgID, "movement-1")

		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
		assert.Equal(t, domain.StockMovementStatusFailed, movement.Status)
		h.repo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should be a no-op for an already applied movement", func(t *testing.T) {
		h := newServiceTestHelper()
		movement := pendingMovement(domain.StockMovementTypeIn, 5)
		movement.Status = domain.StockMovementStatusApplied
		h.repo.On("GetMovementByID", mock.Anything, testOrgID, "movement-1").Return(movement, nil).Once()

		err := h.service.ApplyMovement(context.Background(), testOrgID, "movement-1")

		assert.NoError(t, err)
		h.repo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should reject failed movements", func(t *testing.T) {
		h := newServiceTestHelper()
		movement := pendingMovement(domain.StockMovementTypeIn, 5)
		movement.Status = domain.StockMovementStatusFailed
		h.repo.On("GetMovementByID", mock.Anything, testOrgID, "movement-1").Return(movement, nil).Once()

		err := h.service.ApplyMovement(context.Background(), testOrgID, "movement-1")

		assert.ErrorIs(t, err, inventory.ErrMovementNotPending)
	})
}

func TestServiceGetItemByID(t *testing.T) {
	t.Run("should serve repeat reads from the cache", func(t *testing.T) {
		h := newServiceTestHelper()
		h.repo.On("GetItemByID", mock.Anything, testOrgID, "item-1").Return(stockedItem(), nil).Once()

		first, err := h.service.GetItemByID(context.Background(), testOrgID, "item-1")
		require.NoError(t, err)
		second, err := h.service.GetItemByID(context.Background(), testOrgID, "item-1")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		h.repo.AssertExpectations(t)
	})

	t.Run("should invalidate the cached item when a movement lands", func(t *testing.T) {
		h := newServiceTestHelper()
		h.repo.On("GetItemByID", mock.Anything, testOrgID, "item-1").Return(stockedItem(), nil).Times(3)
		movement := pendingMovement(domain.StockMovementTypeIn, 5)
		h.repo.On("GetMovementByID", mock.Anything, testOrgID, "movement-1").Return(movement, nil).Once()
		h.repo.On("AdjustQuantity", mock.Anything, testOrgID, "item-1", int64(5)).Return(nil).Once()
		h.repo.On("UpdateMovement", mock.Anything, movement).Return(nil).Once()

		_, err := h.service.GetItemByID(context.Background(), testOrgID, "item-1")
		require.NoError(t, err)

		require.NoError(t, h.service.ApplyMovement(context.Background(), testOrgID, "movement-1"))

		_, err = h.service.GetItemByID(context.Background(), testOrgID, "item-1")
		require.NoError(t, err)
		h.repo.AssertExpectations(t)
	})
}
