package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/domain"
)

// Transaction database model
type Transaction struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	Reference      string
	Description    string
	Counterparty   string
	Direction      string
	Amount         int64
	Currency       string
	CategoryID     *uuid.UUID `gorm:"type:uuid;index"`
	OccurredAt     time.Time

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (m *Transaction) FromDomain(t *domain.Transaction) error {
	var id uuid.UUID
	if t.ID != "" {
		parsed, err := uuid.Parse(t.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}
	var categoryID *uuid.UUID
	if t.CategoryID != "" {
		parsed, err := uuid.Parse(t.CategoryID)
		if err != nil {
			return fmt.Errorf("parsing category uuid: %w", err)
		}
		categoryID = &parsed
	}

	m.ID = id
	m.OrganizationID = t.OrganizationID
	m.Reference = t.Reference
	m.Description = t.Description
	m.Counterparty = t.Counterparty
	m.Direction = t.Direction
	m.Amount = t.Amount
	m.Currency = t.Currency
	m.CategoryID = categoryID
	m.OccurredAt = t.OccurredAt
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt

	return nil
}

func (m *Transaction) ToDomain() *domain.Transaction {
	categoryID := ""
	if m.CategoryID != nil {
		categoryID = m.CategoryID.String()
	}

	return &domain.Transaction{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		Reference:      m.Reference,
		Description:    m.Description,
		Counterparty:   m.Counterparty,
		Direction:      m.Direction,
		Amount:         m.Amount,
		Currency:       m.Currency,
		CategoryID:     categoryID,
		OccurredAt:     m.OccurredAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
