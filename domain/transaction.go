package domain

import (
	"time"
)

const (
	TransactionDirectionIn  = "in"
	TransactionDirectionOut = "out"
)

type Transaction struct {
	ID             string `json:"id" yaml:"id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	Reference      string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Counterparty   string `json:"counterparty,omitempty" yaml:"counterparty,omitempty"`
	Direction      string `json:"direction" yaml:"direction"`
	Amount         int64  `json:"amount" yaml:"amount"`
	Currency       string `json:"currency" yaml:"currency"`
	CategoryID     string `json:"category_id,omitempty" yaml:"category_id,omitempty"`

	OccurredAt time.Time `json:"occurred_at" yaml:"occurred_at"`
	CreatedAt  time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (t *Transaction) IsCategorized() bool {
	return t.CategoryID != ""
}

// SearchText is the text surface categorization keyword and pattern
// evaluators match against.
func (t *Transaction) SearchText() string {
	return t.Description + " " + t.Counterparty
}

type ListTransactionsFilter struct {
	OrganizationID string   `mapstructure:"organization_id" validate:"required"`
	CategoryIDs    []string `mapstructure:"category_ids" validate:"omitempty,min=1"`
	Uncategorized  bool     `mapstructure:"uncategorized" validate:"omitempty"`
	Q              string   `mapstructure:"q" validate:"omitempty"`
	Size           int      `mapstructure:"size" validate:"omitempty"`
	Offset         int      `mapstructure:"offset" validate:"omitempty"`
}
