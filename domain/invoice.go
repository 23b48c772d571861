package domain

import (
	"time"
)

const (
	InvoiceStatusDraft  = "draft"
	InvoiceStatusIssued = "issued"
	InvoiceStatusPaid   = "paid"
	InvoiceStatusVoid   = "void"
)

const (
	VATClassStandard = "standard"
	VATClassZero     = "zero"
	VATClassExempt   = "exempt"
)

// StandardVATRateBps is the Zambian standard VAT rate in basis points.
const StandardVATRateBps = 1600

type InvoiceLine struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description" validate:"required"`
	Quantity    int64  `json:"quantity" yaml:"quantity" validate:"required,gt=0"`
	// UnitPrice is in minor units (ngwee).
	UnitPrice   int64  `json:"unit_price" yaml:"unit_price" validate:"gte=0"`
	DiscountBps int64  `json:"discount_bps,omitempty" yaml:"discount_bps,omitempty" validate:"gte=0,lte=10000"`
	VATClass    string `json:"vat_class" yaml:"vat_class" validate:"required,oneof=standard zero exempt"`

	// Computed on write.
	NetAmount int64 `json:"net_amount" yaml:"net_amount"`
	VATAmount int64 `json:"vat_amount" yaml:"vat_amount"`
}

type Invoice struct {
	ID             string         `json:"id" yaml:"id"`
	OrganizationID string         `json:"organization_id" yaml:"organization_id"`
	Number         string         `json:"number" yaml:"number"`
	CustomerName   string         `json:"customer_name" yaml:"customer_name" validate:"required"`
	CustomerTPIN   string         `json:"customer_tpin,omitempty" yaml:"customer_tpin,omitempty"`
	Status         string         `json:"status" yaml:"status"`
	Currency       string         `json:"currency" yaml:"currency"`
	Lines          []*InvoiceLine `json:"lines" yaml:"lines" validate:"required,min=1,dive"`

	Subtotal int64 `json:"subtotal" yaml:"subtotal"`
	VATTotal int64 `json:"vat_total" yaml:"vat_total"`
	Total    int64 `json:"total" yaml:"total"`

	IssuedAt       *time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	DueAt          *time.Time `json:"due_at,omitempty" yaml:"due_at,omitempty"`
	ZRASubmittedAt *time.Time `json:"zra_submitted_at,omitempty" yaml:"zra_submitted_at,omitempty"`
	ZRAReference   string     `json:"zra_reference,omitempty" yaml:"zra_reference,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

type ListInvoicesFilter struct {
	OrganizationID string   `mapstructure:"organization_id" validate:"required"`
	Statuses       []string `mapstructure:"statuses" validate:"omitempty,min=1"`
	Q              string   `mapstructure:"q" validate:"omitempty"`
	Size           int      `mapstructure:"size" validate:"omitempty"`
	Offset         int      `mapstructure:"offset" validate:"omitempty"`
}
