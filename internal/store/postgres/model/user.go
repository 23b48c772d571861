package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/domain"
)

// User database model
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index:idx_users_org_email,unique"`
	Email          string    `gorm:"index:idx_users_org_email,unique"`
	Name           string
	Role           string `gorm:"index"`
	IsActive       bool

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (m *User) FromDomain(u *domain.User) error {
	var id uuid.UUID
	if u.ID != "" {
		parsed, err := uuid.Parse(u.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}

	m.ID = id
	m.OrganizationID = u.OrganizationID
	m.Email = u.Email
	m.Name = u.Name
	m.Role = u.Role
	m.IsActive = u.IsActive
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.UpdatedAt

	return nil
}

func (m *User) ToDomain() *domain.User {
	return &domain.User{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		Email:          m.Email,
		Name:           m.Name,
		Role:           m.Role,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
