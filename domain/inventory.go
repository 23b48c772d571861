package domain

import (
	"time"
)

const (
	StockMovementTypeIn     = "in"
	StockMovementTypeOut    = "out"
	StockMovementTypeAdjust = "adjust"
)

const (
	StockMovementStatusPending = "pending"
	StockMovementStatusApplied = "applied"
	StockMovementStatusFailed  = "failed"
)

type InventoryItem struct {
	ID             string `json:"id" yaml:"id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	SKU            string `json:"sku" yaml:"sku" validate:"required"`
	Barcode        string `json:"barcode,omitempty" yaml:"barcode,omitempty"`
	Name           string `json:"name" yaml:"name" validate:"required"`
	CategoryID     string `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	// UnitPrice is in minor units.
	UnitPrice      int64 `json:"unit_price" yaml:"unit_price" validate:"gte=0"`
	QuantityOnHand int64 `json:"quantity_on_hand" yaml:"quantity_on_hand"`
	ReorderLevel   int64 `json:"reorder_level" yaml:"reorder_level" validate:"gte=0"`
	IsActive       bool  `json:"is_active" yaml:"is_active"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (i *InventoryItem) IsLowStock() bool {
	return i.ReorderLevel > 0 && i.QuantityOnHand <= i.ReorderLevel
}

// StockMovement is a recorded change to an item's quantity on hand.
// Movements are applied asynchronously by a queue worker; applying is
// idempotent by movement ID.
type StockMovement struct {
	ID             string `json:"id" yaml:"id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	ItemID         string `json:"item_id" yaml:"item_id" validate:"required"`
	Type           string `json:"type" yaml:"type" validate:"required,oneof=in out adjust"`
	Quantity       int64  `json:"quantity" yaml:"quantity"`
	Status         string `json:"status" yaml:"status"`
	Reference      string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Reason         string `json:"reason,omitempty" yaml:"reason,omitempty"`
	ActorID        string `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`

	AppliedAt *time.Time `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

type ListInventoryItemsFilter struct {
	OrganizationID string `mapstructure:"organization_id" validate:"required"`
	CategoryID     string `mapstructure:"category_id" validate:"omitempty"`
	LowStockOnly   bool   `mapstructure:"low_stock_only" validate:"omitempty"`
	Q              string `mapstructure:"q" validate:"omitempty"`
	Size           int    `mapstructure:"size" validate:"omitempty"`
	Offset         int    `mapstructure:"offset" validate:"omitempty"`
}

type ListStockMovementsFilter struct {
	OrganizationID string   `mapstructure:"organization_id" validate:"required"`
	ItemID         string   `mapstructure:"item_id" validate:"omitempty"`
	Statuses       []string `mapstructure:"statuses" validate:"omitempty,min=1"`
	Size           int      `mapstructure:"size" validate:"omitempty"`
	Offset         int      `mapstructure:"offset" validate:"omitempty"`
}
