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

// ApprovalRule database model
type ApprovalRule struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	Name           string
	Description    string
	Priority       int
	IsActive       bool
	Conditions     datatypes.JSON
	Actions        datatypes.JSON
	Expression     string
	MatchCount     int
	LastMatchedAt  *time.Time

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ApprovalRule) TableName() string {
	return "approval_rules"
}

// FromDomain transforms *domain.ApprovalRule values into the model
func (m *ApprovalRule) FromDomain(r *domain.ApprovalRule) error {
	conditions, err := json.Marshal(r.Conditions)
	if err != nil {
		return err
	}
	actions, err := json.Marshal(r.Actions)
	if err != nil {
		return err
	}

	var id uuid.UUID
	if r.ID != "" {
		id, err = uuid.Parse(r.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
	}
	m.ID = id
	m.OrganizationID = r.OrganizationID
	m.Name = r.Name
	m.Description = r.Description
	m.Priority = r.Priority
	m.IsActive = r.IsActive
	m.Conditions = datatypes.JSON(conditions)
	m.Actions = datatypes.JSON(actions)
	m.Expression = r.Expression
	m.MatchCount = r.MatchCount
	m.LastMatchedAt = r.LastMatchedAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt

	return nil
}

// ToDomain transforms model into *domain.ApprovalRule
func (m *ApprovalRule) ToDomain() (*domain.ApprovalRule, error) {
	var conditions []domain.RuleCondition
	if m.Conditions != nil {
		if err := json.Unmarshal(m.Conditions, &conditions); err != nil {
			return nil, err
		}
	}
	var actions []domain.RuleAction
	if m.Actions != nil {
		if err := json.Unmarshal(m.Actions, &actions); err != nil {
			return nil, err
		}
	}

	return &domain.ApprovalRule{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Description:    m.Description,
		Priority:       m.Priority,
		IsActive:       m.IsActive,
		Conditions:     conditions,
		Actions:        actions,
		Expression:     m.Expression,
		MatchCount:     m.MatchCount,
		LastMatchedAt:  m.LastMatchedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}
