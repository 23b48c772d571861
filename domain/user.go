package domain

import (
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleOwner   = "owner"
	RoleStaff   = "staff"
)

type User struct {
	ID             string `json:"id" yaml:"id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	Email          string `json:"email" yaml:"email" validate:"required,email"`
	Name           string `json:"name" yaml:"name"`
	Role           string `json:"role" yaml:"role" validate:"required,oneof=admin manager owner staff"`
	IsActive       bool   `json:"is_active" yaml:"is_active"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

type ListUsersFilter struct {
	OrganizationID string   `mapstructure:"organization_id" validate:"required"`
	Roles          []string `mapstructure:"roles" validate:"omitempty,min=1"`
	ActiveOnly     bool     `mapstructure:"active_only" validate:"omitempty"`
	Q              string   `mapstructure:"q" validate:"omitempty"`
	Size           int      `mapstructure:"size" validate:"omitempty"`
	Offset         int      `mapstructure:"offset" validate:"omitempty"`
}
