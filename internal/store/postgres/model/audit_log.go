package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/chimbuka/mabuku/domain"
)

// AuditLog database model
type AuditLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrganizationID string    `gorm:"index"`
	Action         string    `gorm:"index"`
	ActorID        string
	Data           datatypes.JSON
	Timestamp      time.Time `gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (m *AuditLog) FromDomain(l *domain.AuditLog) error {
	data, err := json.Marshal(l.Data)
	if err != nil {
		return err
	}

	m.OrganizationID = l.OrganizationID
	m.Action = l.Action
	m.ActorID = l.ActorID
	m.Data = datatypes.JSON(data)
	m.Timestamp = l.Timestamp

	return nil
}

func (m *AuditLog) ToDomain() (*domain.AuditLog, error) {
	var data map[string]interface{}
	if m.Data != nil {
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return nil, err
		}
	}

	return &domain.AuditLog{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID,
		Action:         m.Action,
		ActorID:        m.ActorID,
		Data:           data,
		Timestamp:      m.Timestamp,
	}, nil
}
