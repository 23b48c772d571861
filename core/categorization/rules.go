package categorization

import (
	"context"
	"errors"
	"fmt"

	"github.com/chimbuka/mabuku/domain"
)

// CreateRule validates and stores a categorization rule.
func (s *Service) CreateRule(ctx context.Context, rule *domain.CategoryRule) error {
	if err := s.validator.Struct(rule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	existing, err := s.ruleRepo.GetByName(ctx, rule.OrganizationID, rule.Name)
	if err != nil && !errors.Is(err, ErrRuleNotFound) {
		return err
	}
	if existing != nil {
		return ErrRuleDuplicateName
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return err
	}

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, AuditKeyRuleCreate, rule); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()

	return nil
}

func (s *Service) FindRules(ctx context.Context, filter *domain.ListCategoryRulesFilter) ([]*domain.CategoryRule, error) {
	return s.ruleRepo.Find(ctx, filter)
}

func (s *Service) GetRule(ctx context.Context, orgID, id string) (*domain.CategoryRule, error) {
	if id == "" {
		return nil, ErrRuleIDEmptyParam
	}
	return s.ruleRepo.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateRule(ctx context.Context, rule *domain.CategoryRule) error {
	if rule.ID == "" {
		return ErrRuleIDEmptyParam
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	existing, err := s.ruleRepo.GetByName(ctx, rule.OrganizationID, rule.Name)
	if err != nil && !errors.Is(err, ErrRuleNotFound) {
		return err
	}
	if existing != nil && existing.ID != rule.ID {
		return ErrRuleDuplicateName
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return err
	}

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, AuditKeyRuleUpdate, rule); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()

	return nil
}

// DeleteRule removes a rule permanently. Suggestions referencing it keep
// its id as a soft reference.
func (s *Service) DeleteRule(ctx context.Context, orgID, id string) error {
	if id == "" {
		return ErrRuleIDEmptyParam
	}
	if err := s.ruleRepo.Delete(ctx, orgID, id); err != nil {
		return err
	}

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, AuditKeyRuleDelete, map[string]interface{}{"id": id}); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()

	return nil
}
