package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/categorization"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type CategoryRuleRepository struct {
	db *gorm.DB
}

func NewCategoryRuleRepository(db *gorm.DB) *CategoryRuleRepository {
	return &CategoryRuleRepository{db}
}

func (r *CategoryRuleRepository) Create(ctx context.Context, rule *domain.CategoryRule) error {
	m := new(model.CategoryRule)
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

func (r *CategoryRuleRepository) Find(ctx context.Context, filter *domain.ListCategoryRulesFilter) ([]*domain.CategoryRule, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.CategoryID != "" {
		db = db.Where(`"category_id" = ?`, filter.CategoryID)
	}
	if filter.ActiveOnly {
		db = db.Where(`"is_active" = ?`, true)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("priority DESC, created_at ASC")

	var models []*model.CategoryRule
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.CategoryRule, 0, len(models))
	for _, m := range models {
		rule, err := m.ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rule)
	}

	return records, nil
}

func (r *CategoryRuleRepository) GetByID(ctx context.Context, orgID, id string) (*domain.CategoryRule, error) {
	m := new(model.CategoryRule)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, categorization.ErrRuleNotFound
		}
		return nil, err
	}

	return m.ToDomain()
}

func (r *CategoryRuleRepository) GetByName(ctx context.Context, orgID, name string) (*domain.CategoryRule, error) {
	m := new(model.CategoryRule)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"name" = ?`, name).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, categorization.ErrRuleNotFound
		}
		return nil, err
	}

	return m.ToDomain()
}

func (r *CategoryRuleRepository) Update(ctx context.Context, rule *domain.CategoryRule) error {
	m := new(model.CategoryRule)
	if err := m.FromDomain(rule); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(m).Where(`"organization_id" = ?`, rule.OrganizationID).Updates(m)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return categorization.ErrRuleNotFound
		}

		newRule, err := m.ToDomain()
		if err != nil {
			return err
		}
		*rule = *newRule

		return nil
	})
}

func (r *CategoryRuleRepository) Delete(ctx context.Context, orgID, id string) error {
	result := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		Delete(&model.CategoryRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return categorization.ErrRuleNotFound
	}

	return nil
}

func (r *CategoryRuleRepository) IncrementMatchCount(ctx context.Context, id string, matchedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.CategoryRule{}).
		Where(`"id" = ?`, id).
		Updates(map[string]interface{}{
			"match_count":     gorm.Expr("match_count + 1"),
			"last_matched_at": matchedAt,
		}).Error
}
