package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/domain"
)

// Invoice database model. Lines are stored as one JSON document; they
// are always written and read as a whole with their invoice.
type Invoice struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	Number         string    `gorm:"index"`
	CustomerName   string
	CustomerTPIN   string
	Status         string
	Currency       string
	Lines          datatypes.JSON
	Subtotal       int64
	VATTotal       int64
	Total          int64
	IssuedAt       *time.Time
	DueAt          *time.Time
	ZRASubmittedAt *time.Time
	ZRAReference   string

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (m *Invoice) FromDomain(i *domain.Invoice) error {
	lines, err := json.Marshal(i.Lines)
	if err != nil {
		return err
	}

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
	m.Number = i.Number
	m.CustomerName = i.CustomerName
	m.CustomerTPIN = i.CustomerTPIN
	m.Status = i.Status
	m.Currency = i.Currency
	m.Lines = datatypes.JSON(lines)
	m.Subtotal = i.Subtotal
	m.VATTotal = i.VATTotal
	m.Total = i.Total
	m.IssuedAt = i.IssuedAt
	m.DueAt = i.DueAt
	m.ZRASubmittedAt = i.ZRASubmittedAt
	m.ZRAReference = i.ZRAReference
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt

	return nil
}

func (m *Invoice) ToDomain() (*domain.Invoice, error) {
	var lines []*domain.InvoiceLine
	if m.Lines != nil {
		if err := json.Unmarshal(m.Lines, &lines); err != nil {
			return nil, err
		}
	}

	return &domain.Invoice{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		Number:         m.Number,
		CustomerName:   m.CustomerName,
		CustomerTPIN:   m.CustomerTPIN,
		Status:         m.Status,
		Currency:       m.Currency,
		Lines:          lines,
		Subtotal:       m.Subtotal,
		VATTotal:       m.VATTotal,
		Total:          m.Total,
		IssuedAt:       m.IssuedAt,
		DueAt:          m.DueAt,
		ZRASubmittedAt: m.ZRASubmittedAt,
		ZRAReference:   m.ZRAReference,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

// InvoiceCounter allocates sequential invoice numbers per organization
// and prefix.
type InvoiceCounter struct {
	OrganizationID string `gorm:"primaryKey"`
	Prefix         string `gorm:"primaryKey"`
	LastValue      int64

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (InvoiceCounter) TableName() string {
	return "invoice_counters"
}
