package domain

import (
	"time"
)

const (
	ExpenseStatusDraft           = "draft"
	ExpenseStatusPendingApproval = "pending_approval"
	ExpenseStatusApproved        = "approved"
	ExpenseStatusRejected        = "rejected"
)

type Expense struct {
	ID             string    `json:"id" yaml:"id"`
	OrganizationID string    `json:"organization_id" yaml:"organization_id"`
	SubmitterID    string    `json:"submitter_id" yaml:"submitter_id"`
	SubmitterRole  string    `json:"submitter_role" yaml:"submitter_role"`
	Status         string    `json:"status" yaml:"status"`
	Amount         int64     `json:"amount" yaml:"amount"`
	Currency       string    `json:"currency" yaml:"currency"`
	Category       string    `json:"category,omitempty" yaml:"category,omitempty"`
	Vendor         string    `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	PaymentMethod  string    `json:"payment_method,omitempty" yaml:"payment_method,omitempty"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	IncurredAt     time.Time `json:"incurred_at" yaml:"incurred_at"`
	CreatedAt      time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (e *Expense) IsDraft() bool {
	return e.Status == ExpenseStatusDraft
}

// ToRuleContext flattens the expense into the fact set evaluated by
// approval rule conditions. Keys here are the condition field names.
func (e *Expense) ToRuleContext() map[string]interface{} {
	return map[string]interface{}{
		"amount":         float64(e.Amount) / 100,
		"currency":       e.Currency,
		"category":       e.Category,
		"submitter_role": e.SubmitterRole,
		"date":           e.IncurredAt.Format(time.RFC3339),
		"vendor":         e.Vendor,
		"payment_method": e.PaymentMethod,
	}
}

type ListExpensesFilter struct {
	OrganizationID string   `mapstructure:"organization_id" validate:"required"`
	SubmitterID    string   `mapstructure:"submitter_id" validate:"omitempty"`
	Statuses       []string `mapstructure:"statuses" validate:"omitempty,min=1"`
	Size           int      `mapstructure:"size" validate:"omitempty"`
	Offset         int      `mapstructure:"offset" validate:"omitempty"`
}
