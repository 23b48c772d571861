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

// Category database model
type Category struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index"`
	Name           string
	Description    string
	Color          string
	IsActive       bool

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}

func (m *Category) FromDomain(c *domain.Category) error {
	var id uuid.UUID
	if c.ID != "" {
		parsed, err := uuid.Parse(c.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}
	var parentID *uuid.UUID
	if c.ParentID != "" {
		parsed, err := uuid.Parse(c.ParentID)
		if err != nil {
			return fmt.Errorf("parsing parent uuid: %w", err)
		}
		parentID = &parsed
	}

	m.ID = id
	m.OrganizationID = c.OrganizationID
	m.ParentID = parentID
	m.Name = c.Name
	m.Description = c.Description
	m.Color = c.Color
	m.IsActive = c.IsActive
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt

	return nil
}

func (m *Category) ToDomain() *domain.Category {
	parentID := ""
	if m.ParentID != nil {
		parentID = m.ParentID.String()
	}
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	return &domain.Category{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		ParentID:       parentID,
		Name:           m.Name,
		Description:    m.Description,
		Color:          m.Color,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		DeletedAt:      deletedAt,
	}
}

// CategoryRule database model. The condition document and nested
// sub-rules are stored as one JSON column each; they are validated
// before write so reads never see a malformed document.
type CategoryRule struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	CategoryID     string
	Name           string
	Type           string
	IsActive       bool
	Priority       int
	Confidence     string
	Conditions     datatypes.JSON
	MatchCount     int
	LastMatchedAt  *time.Time

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CategoryRule) TableName() string {
	return "category_rules"
}

// categoryRuleConditions is the JSON shape of the Conditions column.
type categoryRuleConditions struct {
	Keyword         *domain.KeywordCondition     `json:"keyword,omitempty"`
	AmountRange     *domain.AmountRangeCondition `json:"amount_range,omitempty"`
	Counterparty    *domain.PatternCondition     `json:"counterparty,omitempty"`
	Description     *domain.PatternCondition     `json:"description,omitempty"`
	CombineOperator string                       `json:"combine_operator,omitempty"`
	SubRules        []*domain.CategoryRule       `json:"sub_rules,omitempty"`
}

func (m *CategoryRule) FromDomain(r *domain.CategoryRule) error {
	conditions, err := json.Marshal(categoryRuleConditions{
		Keyword:         r.Keyword,
		AmountRange:     r.AmountRange,
		Counterparty:    r.Counterparty,
		Description:     r.Description,
		CombineOperator: r.CombineOperator,
		SubRules:        r.SubRules,
	})
	if err != nil {
		return err
	}

	var id uuid.UUID
	if r.ID != "" {
		parsed, err := uuid.Parse(r.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}

	m.ID = id
	m.OrganizationID = r.OrganizationID
	m.CategoryID = r.CategoryID
	m.Name = r.Name
	m.Type = r.Type
	m.IsActive = r.IsActive
	m.Priority = r.Priority
	m.Confidence = r.Confidence
	m.Conditions = datatypes.JSON(conditions)
	m.MatchCount = r.MatchCount
	m.LastMatchedAt = r.LastMatchedAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt

	return nil
}

func (m *CategoryRule) ToDomain() (*domain.CategoryRule, error) {
	var conditions categoryRuleConditions
	if m.Conditions != nil {
		if err := json.Unmarshal(m.Conditions, &conditions); err != nil {
			return nil, err
		}
	}

	return &domain.CategoryRule{
		ID:              m.ID.String(),
		OrganizationID:  m.OrganizationID,
		CategoryID:      m.CategoryID,
		Name:            m.Name,
		Type:            m.Type,
		IsActive:        m.IsActive,
		Priority:        m.Priority,
		Confidence:      m.Confidence,
		Keyword:         conditions.Keyword,
		AmountRange:     conditions.AmountRange,
		Counterparty:    conditions.Counterparty,
		Description:     conditions.Description,
		CombineOperator: conditions.CombineOperator,
		SubRules:        conditions.SubRules,
		MatchCount:      m.MatchCount,
		LastMatchedAt:   m.LastMatchedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

// CategorySuggestion database model
type CategorySuggestion struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	TransactionID  string    `gorm:"index"`
	CategoryID     string
	RuleID         string
	Source         string
	Confidence     string
	Score          float64
	Reason         string
	Accepted       *bool

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (CategorySuggestion) TableName() string {
	return "category_suggestions"
}

func (m *CategorySuggestion) FromDomain(s *domain.CategorySuggestion) error {
	var id uuid.UUID
	if s.ID != "" {
		parsed, err := uuid.Parse(s.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}

	m.ID = id
	m.OrganizationID = s.OrganizationID
	m.TransactionID = s.TransactionID
	m.CategoryID = s.CategoryID
	m.RuleID = s.RuleID
	m.Source = s.Source
	m.Confidence = s.Confidence
	m.Score = s.Score
	m.Reason = s.Reason
	m.Accepted = s.Accepted
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt

	return nil
}

func (m *CategorySuggestion) ToDomain() *domain.CategorySuggestion {
	return &domain.CategorySuggestion{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		TransactionID:  m.TransactionID,
		CategoryID:     m.CategoryID,
		RuleID:         m.RuleID,
		Source:         m.Source,
		Confidence:     m.Confidence,
		Score:          m.Score,
		Reason:         m.Reason,
		Accepted:       m.Accepted,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
