package domain

import (
	"time"
)

// AuditLog is an append-only record of a state-changing action.
type AuditLog struct {
	ID             string                 `json:"id" yaml:"id"`
	OrganizationID string                 `json:"organization_id" yaml:"organization_id"`
	Action         string                 `json:"action" yaml:"action"`
	ActorID        string                 `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	Timestamp      time.Time              `json:"timestamp" yaml:"timestamp"`
}

type ListAuditLogsFilter struct {
	OrganizationID string   `mapstructure:"organization_id" validate:"required"`
	Actions        []string `mapstructure:"actions" validate:"omitempty,min=1"`
	ActorID        string   `mapstructure:"actor_id" validate:"omitempty"`
	Size           int      `mapstructure:"size" validate:"omitempty"`
	Offset         int      `mapstructure:"offset" validate:"omitempty"`
}
