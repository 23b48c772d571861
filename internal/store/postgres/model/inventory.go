package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/domain"
)

// InventoryItem database model
type InventoryItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index:idx_items_org_sku,unique"`
	SKU            string    `gorm:"index:idx_items_org_sku,unique"`
	Barcode        string
	Name           string
	CategoryID     string
	UnitPrice      int64
	QuantityOnHand int64
	ReorderLevel   int64
	IsActive       bool

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

func (m *InventoryItem) FromDomain(i *domain.InventoryItem) error {
	var id uuid.UUID
	if i.ID != "" {
		parsed, err := uuid.Parse(i.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}

	m.ID = id
	m.OrganizationID = i.OrganizationID
	m.SKU = i.SKU
	m.Barcode = i.Barcode
	m.Name = i.Name
	m.CategoryID = i.CategoryID
	m.UnitPrice = i.UnitPrice
	m.QuantityOnHand = i.QuantityOnHand
	m.ReorderLevel = i.ReorderLevel
	m.IsActive = i.IsActive
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt

	return nil
}

func (m *InventoryItem) ToDomain() *domain.InventoryItem {
	return &domain.InventoryItem{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		SKU:            m.SKU,
		Barcode:        m.Barcode,
		Name:           m.Name,
		CategoryID:     m.CategoryID,
		UnitPrice:      m.UnitPrice,
		QuantityOnHand: m.QuantityOnHand,
		ReorderLevel:   m.ReorderLevel,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// StockMovement database model
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	ItemID         uuid.UUID `gorm:"type:uuid;index"`
	Type           string
	Quantity       int64
	Status         string
	Reference      string
	Reason         string
	ActorID        string
	AppliedAt      *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

func (m *StockMovement) FromDomain(s *domain.StockMovement) error {
	var id uuid.UUID
	if s.ID != "" {
		parsed, err := uuid.Parse(s.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}
	var itemID uuid.UUID
	if s.ItemID != "" {
		parsed, err := uuid.Parse(s.ItemID)
		if err != nil {
			return fmt.Errorf("parsing item uuid: %w", err)
		}
		itemID = parsed
	}

	m.ID = id
	m.OrganizationID = s.OrganizationID
	m.ItemID = itemID
	m.Type = s.Type
	m.Quantity = s.Quantity
	m.Status = s.Status
	m.Reference = s.Reference
	m.Reason = s.Reason
	m.ActorID = s.ActorID
	m.AppliedAt = s.AppliedAt
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt

	return nil
}

func (m *StockMovement) ToDomain() *domain.StockMovement {
	return &domain.StockMovement{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		ItemID:         m.ItemID.String(),
		Type:           m.Type,
		Quantity:       m.Quantity,
		Status:         m.Status,
		Reference:      m.Reference,
		Reason:         m.Reason,
		ActorID:        m.ActorID,
		AppliedAt:      m.AppliedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
