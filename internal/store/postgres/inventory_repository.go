package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/inventory"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db}
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	m := new(model.InventoryItem)
	if err := m.FromDomain(item); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		*item = *m.ToDomain()

		return nil
	})
}

func (r *InventoryRepository) FindItems(ctx context.Context, filter *domain.ListInventoryItemsFilter) ([]*domain.InventoryItem, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.CategoryID != "" {
		db = db.Where(`"category_id" = ?`, filter.CategoryID)
	}
	if filter.LowStockOnly {
		db = db.Where(`"is_active" = ?`, true).
			Where(`"reorder_level" > 0`).
			Where(`"quantity_on_hand" <= "reorder_level"`)
	}
	if filter.Q != "" {
		db = db.Where(db.Session(&gorm.Session{NewDB: true}).
			Where(`"name" ILIKE ?`, likePattern(filter.Q)).
			Or(`"sku" ILIKE ?`, likePattern(filter.Q)).
			Or(`"barcode" = ?`, filter.Q),
		)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("name ASC")

	var models []*model.InventoryItem
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.InventoryItem, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

func (r *InventoryRepository) GetItemByID(ctx context.Context, orgID, id string) (*domain.InventoryItem, error) {
	m := new(model.InventoryItem)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *InventoryRepository) GetItemBySKU(ctx context.Context, orgID, sku string) (*domain.InventoryItem, error) {
	m := new(model.InventoryItem)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"sku" = ?`, sku).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *InventoryRepository) UpdateItem(ctx context.Context, item *domain.InventoryItem) error {
	m := new(model.InventoryItem)
	if err := m.FromDomain(item); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Where(`"organization_id" = ?`, item.OrganizationID).
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventory.ErrItemNotFound
	}

	return nil
}

// AdjustQuantity applies a delta to quantity on hand atomically in the
// database.
func (r *InventoryRepository) AdjustQuantity(ctx context.Context, orgID, itemID string, delta int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.InventoryItem{}).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, itemID).
		Update("quantity_on_hand", gorm.Expr("quantity_on_hand + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventory.ErrItemNotFound
	}

	return nil
}

func (r *InventoryRepository) CreateMovement(ctx context.Context, movement *domain.StockMovement) error {
	m := new(model.StockMovement)
	if err := m.FromDomain(movement); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		*movement = *m.ToDomain()

		return nil
	})
}

func (r *InventoryRepository) FindMovements(ctx context.Context, filter *domain.ListStockMovementsFilter) ([]*domain.StockMovement, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.ItemID != "" {
		db = db.Where(`"item_id" = ?`, filter.ItemID)
	}
	if filter.Statuses != nil {
		db = db.Where(`"status" IN ?`, filter.Statuses)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("created_at DESC")

	var models []*model.StockMovement
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.StockMovement, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

func (r *InventoryRepository) GetMovementByID(ctx context.Context, orgID, id string) (*domain.StockMovement, error) {
	m := new(model.StockMovement)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrMovementNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *InventoryRepository) UpdateMovement(ctx context.Context, movement *domain.StockMovement) error {
	m := new(model.StockMovement)
	if err := m.FromDomain(movement); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Select("status", "reason", "applied_at").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventory.ErrMovementNotFound
	}

	return nil
}
