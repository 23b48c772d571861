package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	ConditionOperatorGt         = "gt"
	ConditionOperatorGte        = "gte"
	ConditionOperatorLt         = "lt"
	ConditionOperatorLte        = "lte"
	ConditionOperatorEq         = "eq"
	ConditionOperatorNe         = "ne"
	ConditionOperatorIn         = "in"
	ConditionOperatorNotIn      = "not_in"
	ConditionOperatorContains   = "contains"
	ConditionOperatorStartsWith = "starts_with"
)

const (
	RuleActionRequireApproval = "require_approval"
	RuleActionAutoApprove     = "auto_approve"
	RuleActionNotify          = "notify"
	RuleActionEscalate        = "escalate"
)

const (
	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

var urgencyRank = map[string]int{
	UrgencyLow:    0,
	UrgencyNormal: 1,
	UrgencyHigh:   2,
	UrgencyUrgent: 3,
}

// UrgencyRank returns the ordinal weight of an urgency level, defaulting
// unknown values to normal.
func UrgencyRank(urgency string) int {
	if r, ok := urgencyRank[urgency]; ok {
		return r
	}
	return urgencyRank[UrgencyNormal]
}

var (
	ErrInvalidConditionField    = errors.New("unable to parse condition's field")
	ErrInvalidConditionOperator = errors.New("unknown condition operator")
	ErrInvalidConditionValue    = errors.New("invalid condition value")
	ErrInvalidRuleAction        = errors.New("unknown rule action type")
)

var ruleConditionFields = map[string]bool{
	"amount":         true,
	"currency":       true,
	"category":       true,
	"submitter_role": true,
	"date":           true,
	"vendor":         true,
	"payment_method": true,
}

var ruleConditionOperators = map[string]bool{
	ConditionOperatorGt:         true,
	ConditionOperatorGte:        true,
	ConditionOperatorLt:         true,
	ConditionOperatorLte:        true,
	ConditionOperatorEq:         true,
	ConditionOperatorNe:         true,
	ConditionOperatorIn:         true,
	ConditionOperatorNotIn:      true,
	ConditionOperatorContains:   true,
	ConditionOperatorStartsWith: true,
}

// RuleCondition is one AND-combined predicate within an approval rule.
// Conditions are validated at write time so rule evaluation never sees a
// malformed document.
type RuleCondition struct {
	Field    string      `json:"field" yaml:"field" validate:"required"`
	Operator string      `json:"operator" yaml:"operator" validate:"required"`
	Value    interface{} `json:"value" yaml:"value" validate:"required"`
}

func (c RuleCondition) Validate() error {
	if !ruleConditionFields[c.Field] {
		return fmt.Errorf("%w: %q", ErrInvalidConditionField, c.Field)
	}
	if !ruleConditionOperators[c.Operator] {
		return fmt.Errorf("%w: %q", ErrInvalidConditionOperator, c.Operator)
	}
	if c.Operator == ConditionOperatorIn || c.Operator == ConditionOperatorNotIn {
		if _, ok := c.Value.([]interface{}); !ok {
			return fmt.Errorf("%w: %q requires an array value", ErrInvalidConditionValue, c.Operator)
		}
	}
	return nil
}

// RuleAction describes what a matching rule does. Only require_approval
// produces an ApprovalRequirement; auto_approve, notify and escalate are
// accepted and stored but not acted upon by the workflow yet.
type RuleAction struct {
	Type            string   `json:"type" yaml:"type" validate:"required,oneof=require_approval auto_approve notify escalate"`
	ApproverRoles   []string `json:"approver_roles,omitempty" yaml:"approver_roles,omitempty"`
	ApproverUserIDs []string `json:"approver_user_ids,omitempty" yaml:"approver_user_ids,omitempty"`
	EscalationHours int      `json:"escalation_hours,omitempty" yaml:"escalation_hours,omitempty"`
	Urgency         string   `json:"urgency,omitempty" yaml:"urgency,omitempty"`
}

func (a RuleAction) Validate() error {
	switch a.Type {
	case RuleActionRequireApproval:
		if len(a.ApproverRoles) == 0 && len(a.ApproverUserIDs) == 0 {
			return fmt.Errorf("%w: require_approval needs approver roles or user ids", ErrInvalidRuleAction)
		}
	case RuleActionAutoApprove, RuleActionNotify, RuleActionEscalate:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRuleAction, a.Type)
	}
	if a.Urgency != "" {
		if _, ok := urgencyRank[a.Urgency]; !ok {
			return fmt.Errorf("%w: unknown urgency %q", ErrInvalidRuleAction, a.Urgency)
		}
	}
	return nil
}

// ApprovalRule is an organization-scoped rule evaluated against submitted
// expenses. Conditions are AND-combined; every matching rule contributes
// one requirement per require_approval action.
type ApprovalRule struct {
	ID             string          `json:"id" yaml:"id"`
	OrganizationID string          `json:"organization_id" yaml:"organization_id"`
	Name           string          `json:"name" yaml:"name" validate:"required"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	Priority       int             `json:"priority" yaml:"priority"`
	IsActive       bool            `json:"is_active" yaml:"is_active"`
	Conditions     []RuleCondition `json:"conditions" yaml:"conditions" validate:"required,min=1,dive"`
	Actions        []RuleAction    `json:"actions" yaml:"actions" validate:"required,min=1,dive"`

	// Expression is an optional expr guard AND-combined with Conditions.
	// It is evaluated with the expense fact set bound to $expense.
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`

	MatchCount    int        `json:"match_count" yaml:"match_count"`
	LastMatchedAt *time.Time `json:"last_matched_at,omitempty" yaml:"last_matched_at,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (r *ApprovalRule) Validate() error {
	for i, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("conditions[%d]: %w", i, err)
		}
	}
	for i, a := range r.Actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
	}
	return nil
}

// ApprovalRequirement is the ephemeral product of evaluating one matching
// rule. It exists only within a single evaluation call and is never
// persisted.
type ApprovalRequirement struct {
	RuleID          string   `json:"rule_id" yaml:"rule_id"`
	RuleName        string   `json:"rule_name" yaml:"rule_name"`
	RulePriority    int      `json:"rule_priority" yaml:"rule_priority"`
	ApproverRoles   []string `json:"approver_roles,omitempty" yaml:"approver_roles,omitempty"`
	ApproverUserIDs []string `json:"approver_user_ids,omitempty" yaml:"approver_user_ids,omitempty"`
	EscalationHours int      `json:"escalation_hours" yaml:"escalation_hours"`
	Urgency         string   `json:"urgency" yaml:"urgency"`
}

type ListApprovalRulesFilter struct {
	OrganizationID string `mapstructure:"organization_id" validate:"required"`
	ActiveOnly     bool   `mapstructure:"active_only" validate:"omitempty"`
	Size           int    `mapstructure:"size" validate:"omitempty"`
	Offset         int    `mapstructure:"offset" validate:"omitempty"`
}
