package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/domain"
)

// ApprovalRequest database model
type ApprovalRequest struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	ExpenseID      string    `gorm:"uniqueIndex"`
	RequesterID    string
	Status         string
	Urgency        string
	Amount         int64
	Currency       string
	DueAt          *time.Time

	Tasks []*ApprovalTask `gorm:"ForeignKey:RequestID;References:ID"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ApprovalRequest) TableName() string {
	return "approval_requests"
}

func (m *ApprovalRequest) FromDomain(r *domain.ApprovalRequest) error {
	var id uuid.UUID
	if r.ID != "" {
		parsed, err := uuid.Parse(r.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}

	var tasks []*ApprovalTask
	for _, t := range r.Tasks {
		m := new(ApprovalTask)
		if err := m.FromDomain(t); err != nil {
			return err
		}
		tasks = append(tasks, m)
	}

	m.ID = id
	m.OrganizationID = r.OrganizationID
	m.ExpenseID = r.ExpenseID
	m.RequesterID = r.RequesterID
	m.Status = r.Status
	m.Urgency = r.Urgency
	m.Amount = r.Amount
	m.Currency = r.Currency
	m.DueAt = r.DueAt
	m.Tasks = tasks
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt

	return nil
}

func (m *ApprovalRequest) ToDomain() (*domain.ApprovalRequest, error) {
	var tasks []*domain.ApprovalTask
	for _, t := range m.Tasks {
		task, err := t.ToDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return &domain.ApprovalRequest{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		ExpenseID:      m.ExpenseID,
		RequesterID:    m.RequesterID,
		Status:         m.Status,
		Urgency:        m.Urgency,
		Amount:         m.Amount,
		Currency:       m.Currency,
		DueAt:          m.DueAt,
		Tasks:          tasks,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

// ApprovalTask database model
type ApprovalTask struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	RequestID  uuid.UUID `gorm:"type:uuid;index"`
	RuleID     string
	ApproverID string `gorm:"index"`
	Status     string
	Decision   string
	Comment    string
	Sequence   int
	IsRequired bool
	DecidedAt  *time.Time

	Request *ApprovalRequest `gorm:"ForeignKey:RequestID;References:ID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ApprovalTask) TableName() string {
	return "approval_tasks"
}

func (m *ApprovalTask) FromDomain(t *domain.ApprovalTask) error {
	var id uuid.UUID
	if t.ID != "" {
		parsed, err := uuid.Parse(t.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}
	var requestID uuid.UUID
	if t.RequestID != "" {
		parsed, err := uuid.Parse(t.RequestID)
		if err != nil {
			return fmt.Errorf("parsing request uuid: %w", err)
		}
		requestID = parsed
	}

	m.ID = id
	m.RequestID = requestID
	m.RuleID = t.RuleID
	m.ApproverID = t.ApproverID
	m.Status = t.Status
	m.Decision = t.Decision
	m.Comment = t.Comment
	m.Sequence = t.Sequence
	m.IsRequired = t.IsRequired
	m.DecidedAt = t.DecidedAt
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt

	return nil
}

func (m *ApprovalTask) ToDomain() (*domain.ApprovalTask, error) {
	return &domain.ApprovalTask{
		ID:         m.ID.String(),
		RequestID:  m.RequestID.String(),
		RuleID:     m.RuleID,
		ApproverID: m.ApproverID,
		Status:     m.Status,
		Decision:   m.Decision,
		Comment:    m.Comment,
		Sequence:   m.Sequence,
		IsRequired: m.IsRequired,
		DecidedAt:  m.DecidedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

// ApprovalHistory database model
type ApprovalHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	RequestID uuid.UUID `gorm:"type:uuid;index"`
	Action    string
	ActorID   string
	Comment   string

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ApprovalHistory) TableName() string {
	return "approval_histories"
}

func (m *ApprovalHistory) FromDomain(h *domain.ApprovalHistory) error {
	var id uuid.UUID
	if h.ID != "" {
		parsed, err := uuid.Parse(h.ID)
		if err != nil {
			return fmt.Errorf("parsing uuid: %w", err)
		}
		id = parsed
	}
	var requestID uuid.UUID
	if h.RequestID != "" {
		parsed, err := uuid.Parse(h.RequestID)
		if err != nil {
			return fmt.Errorf("parsing request uuid: %w", err)
		}
		requestID = parsed
	}

	m.ID = id
	m.RequestID = requestID
	m.Action = h.Action
	m.ActorID = h.ActorID
	m.Comment = h.Comment
	m.CreatedAt = h.CreatedAt

	return nil
}

func (m *ApprovalHistory) ToDomain() *domain.ApprovalHistory {
	return &domain.ApprovalHistory{
		ID:        m.ID.String(),
		RequestID: m.RequestID.String(),
		Action:    m.Action,
		ActorID:   m.ActorID,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}
