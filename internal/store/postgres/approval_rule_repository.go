package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/approvalrule"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type ApprovalRuleRepository struct {
	db *gorm.DB
}

func NewApprovalRuleRepository(db *gorm.DB) *ApprovalRuleRepository {
	return &ApprovalRuleRepository{db}
}

func (r *ApprovalRuleRepository) Create(ctx context.Context, rule *domain.ApprovalRule) error {
	m := new(model.ApprovalRule)
	if err := m.FromDomain(rule); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}

		newRule, err := m.ToDomain()
		if err != nil {
			return err
		}
		*rule = *newRule

		return nil
	})
}

func (r *ApprovalRuleRepository) Find(ctx context.Context, filter *domain.ListApprovalRulesFilter) ([]*domain.ApprovalRule, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.ActiveOnly {
		db = db.Where(`"is_active" = ?`, true)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("priority DESC, created_at ASC")

	var models []*model.ApprovalRule
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.ApprovalRule, 0, len(models))
	for _, m := range models {
		rule, err := m.ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rule)
	}

	return records, nil
}

func (r *ApprovalRuleRepository) GetByID(ctx context.Context, orgID, id string) (*domain.ApprovalRule, error) {
	m := new(model.ApprovalRule)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approvalrule.ErrRuleNotFound
		}
		return nil, err
	}

	return m.ToDomain()
}

func (r *ApprovalRuleRepository) GetByName(ctx context.Context, orgID, name string) (*domain.ApprovalRule, error) {
	m := new(model.ApprovalRule)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"name" = ?`, name).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approvalrule.ErrRuleNotFound
		}
		return nil, err
	}

	return m.ToDomain()
}

func (r *ApprovalRuleRepository) Update(ctx context.Context, rule *domain.ApprovalRule) error {
	m := new(model.ApprovalRule)
	if err := m.FromDomain(rule); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(m).Where(`"organization_id" = ?`, rule.OrganizationID).Updates(m)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return approvalrule.ErrRuleNotFound
		}

		newRule, err := m.ToDomain()
		if err != nil {
			return err
		}
		*rule = *newRule

		return nil
	})
}

func (r *ApprovalRuleRepository) Delete(ctx context.Context, orgID, id string) error {
	result := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		Delete(&model.ApprovalRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return approvalrule.ErrRuleNotFound
	}

	return nil
}

func (r *ApprovalRuleRepository) IncrementMatchCount(ctx context.Context, id string, matchedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ApprovalRule{}).
		Where(`"id" = ?`, id).
		Updates(map[string]interface{}{
			"match_count":     gorm.Expr("match_count + 1"),
			"last_matched_at": matchedAt,
		}).Error
}
