package approvalrule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/pkg/evaluator"
	"github.com/chimbuka/mabuku/pkg/log"
)

const (
	AuditKeyCreate = "approval_rule.create"
	AuditKeyUpdate = "approval_rule.update"
	AuditKeyDelete = "approval_rule.delete"
)

type repository interface {
	Create(context.Context, *domain.ApprovalRule) error
	Find(context.Context, *domain.ListApprovalRulesFilter) ([]*domain.ApprovalRule, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.ApprovalRule, error)
	GetByName(ctx context.Context, orgID, name string) (*domain.ApprovalRule, error)
	Update(context.Context, *domain.ApprovalRule) error
	Delete(ctx context.Context, orgID, id string) error
	IncrementMatchCount(ctx context.Context, id string, matchedAt time.Time) error
}

type ServiceDeps struct {
	Repository repository

	Validator   *validator.Validate
	Logger      log.Logger
	AuditLogger audit.AuditLogger
}

// Service evaluates approval rules against expenses and manages the rule
// definitions themselves.
type Service struct {
	repo repository

	validator   *validator.Validate
	logger      log.Logger
	auditLogger audit.AuditLogger

	TimeNow func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps.Repository,
		deps.Validator,
		deps.Logger,
		deps.AuditLogger,
		time.Now,
	}
}

func (s *Service) Create(ctx context.Context, rule *domain.ApprovalRule) error {
	if err := s.validator.Struct(rule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	existing, err := s.repo.GetByName(ctx, rule.OrganizationID, rule.Name)
	if err != nil && !errors.Is(err, ErrRuleNotFound) {
		return err
	}
	if existing != nil {
		return ErrRuleDuplicateName
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return err
	}

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, AuditKeyCreate, rule); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()

	return nil
}

func (s *Service) Find(ctx context.Context, filter *domain.ListApprovalRulesFilter) ([]*domain.ApprovalRule, error) {
	return s.repo.Find(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, orgID, id string) (*domain.ApprovalRule, error) {
	if id == "" {
		return nil, ErrRuleIDEmptyParam
	}
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) Update(ctx context.Context, rule *domain.ApprovalRule) error {
	if rule.ID == "" {
		return ErrRuleIDEmptyParam
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	existing, err := s.repo.GetByName(ctx, rule.OrganizationID, rule.Name)
	if err != nil && !errors.Is(err, ErrRuleNotFound) {
		return err
	}
	if existing != nil && existing.ID != rule.ID {
		return ErrRuleDuplicateName
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		return err
	}

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, AuditKeyUpdate, rule); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()

	return nil
}

// Delete removes a rule permanently. Suggestions and history referencing
// the rule keep its id as a soft reference.
func (s *Service) Delete(ctx context.Context, orgID, id string) error {
	if id == "" {
		return ErrRuleIDEmptyParam
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, AuditKeyDelete, map[string]interface{}{"id": id}); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()

	return nil
}

// Evaluate runs all active rules of the organization against the expense
// fact set and returns the approval requirements of every matching rule,
// ordered by rule priority descending. A nil/empty result means the
// expense does not require approval.
func (s *Service) Evaluate(ctx context.Context, orgID string, facts map[string]interface{}) ([]*domain.ApprovalRequirement, error) {
	if orgID == "" {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidRuleContext)
	}

	rules, err := s.repo.Find(ctx, &domain.ListApprovalRulesFilter{
		OrganizationID: orgID,
		ActiveOnly:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching active rules: %w", err)
	}

	var requirements []*domain.ApprovalRequirement
	for _, rule := range rules {
		matched, err := s.ruleMatches(ctx, rule, facts)
		if err != nil {
			return nil, fmt.Errorf("evaluating rule %q: %w", rule.Name, err)
		}
		if !matched {
			continue
		}

		for _, action := range rule.Actions {
			switch action.Type {
			case domain.RuleActionRequireApproval:
				urgency := action.Urgency
				if urgency == "" {
					urgency = domain.UrgencyNormal
				}
				requirements = append(requirements, &domain.ApprovalRequirement{
					RuleID:          rule.ID,
					RuleName:        rule.Name,
					RulePriority:    rule.Priority,
					ApproverRoles:   action.ApproverRoles,
					ApproverUserIDs: action.ApproverUserIDs,
					EscalationHours: action.EscalationHours,
					Urgency:         urgency,
				})
			default:
				// auto_approve, notify and escalate are parsed but not
				// turned into requirements yet.
				s.logger.Debug(ctx, "skipping non-requirement rule action", "rule", rule.Name, "action", action.Type)
			}
		}

		ruleID := rule.ID
		matchedAt := s.TimeNow()
		go func() {
			ctx := context.WithoutCancel(ctx)
			if err := s.repo.IncrementMatchCount(ctx, ruleID, matchedAt); err != nil {
				s.logger.Error(ctx, "failed to update rule match counter", "rule_id", ruleID, "error", err)
			}
		}()
	}

	sort.SliceStable(requirements, func(i, j int) bool {
		return requirements[i].RulePriority > requirements[j].RulePriority
	})

	return requirements, nil
}

func (s *Service) ruleMatches(ctx context.Context, rule *domain.ApprovalRule, facts map[string]interface{}) (bool, error) {
	for _, condition := range rule.Conditions {
		matched := s.evaluateCondition(ctx, condition, facts)
		if !matched {
			return false, nil
		}
	}

	if rule.Expression != "" {
		matched, err := evaluator.Expression(rule.Expression).EvaluateBool(map[string]interface{}{
			"expense": facts,
		})
		if err != nil {
			s.logger.Warn(ctx, "rule expression evaluation failed, treating as non-matching", "rule", rule.Name, "error", err)
			return false, nil
		}
		if !matched {
			return false, nil
		}
	}

	return true, nil
}

// evaluateCondition applies one condition against the fact set. Unknown
// fields and operators evaluate to non-matching.
func (s *Service) evaluateCondition(ctx context.Context, c domain.RuleCondition, facts map[string]interface{}) bool {
	actual, ok := facts[c.Field]
	if !ok {
		s.logger.Warn(ctx, "unknown condition field, treating as non-matching", "field", c.Field)
		return false
	}

	switch c.Operator {
	case domain.ConditionOperatorGt, domain.ConditionOperatorGte,
		domain.ConditionOperatorLt, domain.ConditionOperatorLte:
		a, aok := toFloat(actual)
		b, bok := toFloat(c.Value)
		if !aok || !bok {
			return false
		}
		switch c.Operator {
		case domain.ConditionOperatorGt:
			return a > b
		case domain.ConditionOperatorGte:
			return a >= b
		case domain.ConditionOperatorLt:
			return a < b
		default:
			return a <= b
		}
	case domain.ConditionOperatorEq:
		return looseEqual(actual, c.Value)
	case domain.ConditionOperatorNe:
		return !looseEqual(actual, c.Value)
	case domain.ConditionOperatorIn, domain.ConditionOperatorNotIn:
		values, ok := c.Value.([]interface{})
		if !ok {
			s.logger.Warn(ctx, "in/not_in condition value is not an array, treating as non-matching", "field", c.Field)
			return false
		}
		found := false
		for _, v := range values {
			if looseEqual(actual, v) {
				found = true
				break
			}
		}
		if c.Operator == domain.ConditionOperatorIn {
			return found
		}
		return !found
	case domain.ConditionOperatorContains:
		return strings.Contains(strings.ToLower(fmt.Sprint(actual)), strings.ToLower(fmt.Sprint(c.Value)))
	case domain.ConditionOperatorStartsWith:
		return strings.HasPrefix(strings.ToLower(fmt.Sprint(actual)), strings.ToLower(fmt.Sprint(c.Value)))
	default:
		s.logger.Warn(ctx, "unknown condition operator, treating as non-matching", "operator", c.Operator)
		return false
	}
}

// looseEqual compares values numerically when both sides are numeric,
// falling back to string comparison otherwise. Rule documents come from
// JSON, so numbers arrive as float64 regardless of the fact type.
func looseEqual(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// DefaultRules returns the starter rule set offered to new organizations.
func DefaultRules(orgID string) []*domain.ApprovalRule {
	return []*domain.ApprovalRule{
		{
			OrganizationID: orgID,
			Name:           "Manager approval above K1,000",
			Description:    "Expenses above 1,000 ZMW need a manager or admin sign-off",
			Priority:       10,
			IsActive:       true,
			Conditions: []domain.RuleCondition{
				{Field: "amount", Operator: domain.ConditionOperatorGt, Value: float64(1000)},
			},
			Actions: []domain.RuleAction{
				{
					Type:            domain.RuleActionRequireApproval,
					ApproverRoles:   []string{domain.RoleManager, domain.RoleAdmin},
					EscalationHours: 24,
					Urgency:         domain.UrgencyNormal,
				},
			},
		},
		{
			OrganizationID: orgID,
			Name:           "Admin approval above K5,000",
			Description:    "Large expenses need an admin sign-off",
			Priority:       20,
			IsActive:       true,
			Conditions: []domain.RuleCondition{
				{Field: "amount", Operator: domain.ConditionOperatorGt, Value: float64(5000)},
			},
			Actions: []domain.RuleAction{
				{
					Type:            domain.RuleActionRequireApproval,
					ApproverRoles:   []string{domain.RoleAdmin},
					EscalationHours: 12,
					Urgency:         domain.UrgencyHigh,
				},
			},
		},
	}
}
