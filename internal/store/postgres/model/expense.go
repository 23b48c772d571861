package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/domain"
)

// Expense database model
type Expense struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	SubmitterID    string    `gorm:"index"`
	SubmitterRole  string
	Status         string
	Amount         int64
	Currency       string
	Category       string
	Vendor         string
	PaymentMethod  string
	Description    string
	IncurredAt     time.Time

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (m *Expense) FromDomain(e *domain.Expense) error {
	var id uuid.UUID
	if e.ID != "" {
		parsed, err := uuid.Parse(e.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}

	m.ID = id
	m.OrganizationID = e.OrganizationID
	m.SubmitterID = e.SubmitterID
	m.SubmitterRole = e.SubmitterRole
	m.Status = e.Status
	m.Amount = e.Amount
	m.Currency = e.Currency
	m.Category = e.Category
	m.Vendor = e.Vendor
	m.PaymentMethod = e.PaymentMethod
	m.Description = e.Description
	m.IncurredAt = e.IncurredAt
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt

	return nil
}

func (m *Expense) ToDomain() *domain.Expense {
	return &domain.Expense{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		SubmitterID:    m.SubmitterID,
		SubmitterRole:  m.SubmitterRole,
		Status:         m.Status,
		Amount:         m.Amount,
		Currency:       m.Currency,
		Category:       m.Category,
		Vendor:         m.Vendor,
		PaymentMethod:  m.PaymentMethod,
		Description:    m.Description,
		IncurredAt:     m.IncurredAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
