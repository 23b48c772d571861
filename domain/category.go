package domain

import (
	"time"
)

type Category struct {
	ID             string `json:"id" yaml:"id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	ParentID       string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Name           string `json:"name" yaml:"name" validate:"required"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Color          string `json:"color,omitempty" yaml:"color,omitempty"`
	IsActive       bool   `json:"is_active" yaml:"is_active"`

	CreatedAt time.Time  `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// CategoryNode is a category with its children resolved, used by the
// hierarchy endpoint.
type CategoryNode struct {
	Category
	Path     string          `json:"path" yaml:"path"`
	Depth    int             `json:"depth" yaml:"depth"`
	Children []*CategoryNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type CategoryStats struct {
	CategoryID       string `json:"category_id" yaml:"category_id"`
	CategoryName     string `json:"category_name" yaml:"category_name"`
	TransactionCount int64  `json:"transaction_count" yaml:"transaction_count"`
	TotalAmount      int64  `json:"total_amount" yaml:"total_amount"`
}

// CategoryMonthlyTotal is one month's aggregate for the analytics endpoint.
type CategoryMonthlyTotal struct {
	CategoryID  string `json:"category_id" yaml:"category_id"`
	Month       string `json:"month" yaml:"month"`
	TotalAmount int64  `json:"total_amount" yaml:"total_amount"`
	Count       int64  `json:"count" yaml:"count"`
}

type ListCategoriesFilter struct {
	OrganizationID string `mapstructure:"organization_id" validate:"required"`
	ParentID       string `mapstructure:"parent_id" validate:"omitempty"`
	ActiveOnly     bool   `mapstructure:"active_only" validate:"omitempty"`
	Q              string `mapstructure:"q" validate:"omitempty"`
	Size           int    `mapstructure:"size" validate:"omitempty"`
	Offset         int    `mapstructure:"offset" validate:"omitempty"`
}
