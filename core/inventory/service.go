package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/cache"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/pkg/log"
)

const (
	AuditKeyItemCreate   = "inventory.item.create"
	AuditKeyItemUpdate   = "inventory.item.update"
	AuditKeyMovement     = "inventory.movement.create"
	AuditKeyMovementDone = "inventory.movement.apply"

	cacheEntityItem = "inventory_item"

	// JobTypeApplyMovement is the queue job that applies a pending stock
	// movement.
	JobTypeApplyMovement = "stock_movement_apply"
)

type repository interface {
	CreateItem(context.Context, *domain.InventoryItem) error
	FindItems(context.Context, *domain.ListInventoryItemsFilter) ([]*domain.InventoryItem, error)
	GetItemByID(ctx context.Context, orgID, id string) (*domain.InventoryItem, error)
	GetItemBySKU(ctx context.Context, orgID, sku string) (*domain.InventoryItem, error)
	UpdateItem(context.Context, *domain.InventoryItem) error
	AdjustQuantity(ctx context.Context, orgID, itemID string, delta int64) error
	CreateMovement(context.Context, *domain.StockMovement) error
	FindMovements(context.Context, *domain.ListStockMovementsFilter) ([]*domain.StockMovement, error)
	GetMovementByID(ctx context.Context, orgID, id string) (*domain.StockMovement, error)
	UpdateMovement(context.Context, *domain.StockMovement) error
}

type jobQueue interface {
	Enqueue(ctx context.Context, jobType string, payload interface{}) error
}

// ApplyMovementPayload is the queue payload for movement processing.
type ApplyMovementPayload struct {
	OrganizationID string `json:"organization_id"`
	MovementID     string `json:"movement_id"`
}

type ServiceDeps struct {
	Repository repository
	Queue      jobQueue
	Cache      *cache.Cache

	Validator   *validator.Validate
	Logger      log.Logger
	AuditLogger audit.AuditLogger
}

type Service struct {
	repo  repository
	queue jobQueue
	cache *cache.Cache

	validator   *validator.Validate
	logger      log.Logger
	auditLogger audit.AuditLogger

	TimeNow func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps.Repository,
		deps.Queue,
		deps.Cache,
		deps.Validator,
		deps.Logger,
		deps.AuditLogger,
		time.Now,
	}
}

func (s *Service) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	if err := s.validator.Struct(item); err != nil {
		return err
	}
	if item.Barcode != "" && !ValidBarcode(item.Barcode) {
		return ErrInvalidBarcode
	}

	existing, err := s.repo.GetItemBySKU(ctx, item.OrganizationID, item.SKU)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return err
	}
	if existing != nil {
		return ErrDuplicateSKU
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return err
	}
	s.auditAsync(ctx, AuditKeyItemCreate, item)
	return nil
}

func (s *Service) FindItems(ctx context.Context, filter *domain.ListInventoryItemsFilter) ([]*domain.InventoryItem, error) {
	return s.repo.FindItems(ctx, filter)
}

// GetItemByID reads through the per-organization item cache.
func (s *Service) GetItemByID(ctx context.Context, orgID, id string) (*domain.InventoryItem, error) {
	if id == "" {
		return nil, ErrItemIDEmptyParam
	}
	if cached, ok := s.cache.Get(orgID, cacheEntityItem, id); ok {
		if item, ok := cached.(*domain.InventoryItem); ok {
			return item, nil
		}
	}

	item, err := s.repo.GetItemByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(orgID, cacheEntityItem, id, item)
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, item *domain.InventoryItem) error {
	if item.ID == "" {
		return ErrItemIDEmptyParam
	}
	if item.Barcode != "" && !ValidBarcode(item.Barcode) {
		return ErrInvalidBarcode
	}

	existing, err := s.repo.GetItemBySKU(ctx, item.OrganizationID, item.SKU)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return err
	}
	if existing != nil && existing.ID != item.ID {
		return ErrDuplicateSKU
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return err
	}
	s.cache.Delete(item.OrganizationID, cacheEntityItem, item.ID)
	s.auditAsync(ctx, AuditKeyItemUpdate, item)
	return nil
}

// RecordMovement persists a pending stock movement and enqueues it for
// asynchronous application.
func (s *Service) RecordMovement(ctx context.Context, movement *domain.StockMovement) error {
	if err := s.validator.Struct(movement); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMovement, err)
	}
	if movement.Type != domain.StockMovementTypeAdjust && movement.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive for %s movements", ErrInvalidMovement, movement.Type)
	}

	if _, err := s.repo.GetItemByID(ctx, movement.OrganizationID, movement.ItemID); err != nil {
		return err
	}

	movement.Status = domain.StockMovementStatusPending
	if err := s.repo.CreateMovement(ctx, movement); err != nil {
		return err
	}

	if err := s.queue.Enqueue(ctx, JobTypeApplyMovement, &ApplyMovementPayload{
		OrganizationID: movement.OrganizationID,
		MovementID:     movement.ID,
	}); err != nil {
		return fmt.Errorf("enqueueing stock movement: %w", err)
	}

	s.auditAsync(ctx, AuditKeyMovement, movement)
	return nil
}

// ApplyMovement executes a pending movement against the item's quantity
// on hand. It is idempotent: re-running an already-applied movement is a
// no-op.
func (s *Service) ApplyMovement(ctx context.Context, orgID, movementID string) error {
	movement, err := s.repo.GetMovementByID(ctx, orgID, movementID)
	if err != nil {
		return err
	}
	if movement.Status == domain.StockMovementStatusApplied {
		return nil
	}
	if movement.Status != domain.StockMovementStatusPending {
		return ErrMovementNotPending
	}

	item, err := s.repo.GetItemByID(ctx, orgID, movement.ItemID)
	if err != nil {
		return err
	}

	delta := movement.Quantity
	switch movement.Type {
	case domain.StockMovementTypeOut:
		delta = -movement.Quantity
	case domain.StockMovementTypeAdjust:
		delta = movement.Quantity - item.QuantityOnHand
	}

	if item.QuantityOnHand+delta < 0 {
		movement.Status = domain.StockMovementStatusFailed
		movement.Reason = ErrInsufficientStock.Error()
		if err := s.repo.UpdateMovement(ctx, movement); err != nil {
			return err
		}
		return ErrInsufficientStock
	}

	if err := s.repo.AdjustQuantity(ctx, orgID, item.ID, delta); err != nil {
		return fmt.Errorf("adjusting quantity: %w", err)
	}

	now := s.TimeNow()
	movement.Status = domain.StockMovementStatusApplied
	movement.AppliedAt = &now
	if err := s.repo.UpdateMovement(ctx, movement); err != nil {
		return err
	}

	s.cache.Delete(orgID, cacheEntityItem, item.ID)
	s.auditAsync(ctx, AuditKeyMovementDone, map[string]interface{}{"movement_id": movementID})
	return nil
}

func (s *Service) FindMovements(ctx context.Context, filter *domain.ListStockMovementsFilter) ([]*domain.StockMovement, error) {
	return s.repo.FindMovements(ctx, filter)
}

// ListLowStock returns active items at or below their reorder level.
func (s *Service) ListLowStock(ctx context.Context, orgID string) ([]*domain.InventoryItem, error) {
	return s.repo.FindItems(ctx, &domain.ListInventoryItemsFilter{
		OrganizationID: orgID,
		LowStockOnly:   true,
	})
}

func (s *Service) auditAsync(ctx context.Context, key string, data interface{}) {
	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, key, data); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()
}
