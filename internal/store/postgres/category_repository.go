package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/category"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m := new(model.Category)
	if err := m.FromDomain(c); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		*c = *m.ToDomain()

		return nil
	})
}

func (r *CategoryRepository) Find(ctx context.Context, filter *domain.ListCategoriesFilter) ([]*domain.Category, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.ParentID != "" {
		db = db.Where(`"parent_id" = ?`, filter.ParentID)
	}
	if filter.ActiveOnly {
		db = db.Where(`"is_active" = ?`, true)
	}
	if filter.Q != "" {
		db = db.Where(`"name" ILIKE ?`, likePattern(filter.Q))
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("name ASC")

	var models []*model.Category
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.Category, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Category, error) {
	m := new(model.Category)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, orgID, parentID, name string) (*domain.Category, error) {
	db := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`LOWER("name") = LOWER(?)`, name)
	if parentID == "" {
		db = db.Where(`"parent_id" IS NULL`)
	} else {
		db = db.Where(`"parent_id" = ?`, parentID)
	}

	m := new(model.Category)
	if err := db.First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	m := new(model.Category)
	if err := m.FromDomain(c); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Where(`"organization_id" = ?`, c.OrganizationID).
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return category.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, orgID, id string) error {
	result := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		Delete(&model.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return category.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepository) CountChildren(ctx context.Context, orgID, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where(`"organization_id" = ?`, orgID).
		Where(`"parent_id" = ?`, id).
		Count(&count).Error
	return count, err
}

func (r *CategoryRepository) CountTransactions(ctx context.Context, orgID, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where(`"organization_id" = ?`, orgID).
		Where(`"category_id" = ?`, id).
		Count(&count).Error
	return count, err
}

func (r *CategoryRepository) GetStats(ctx context.Context, orgID string) ([]*domain.CategoryStats, error) {
	var stats []*domain.CategoryStats
	err := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Select(`"categories"."id" AS "category_id",
			"categories"."name" AS "category_name",
			COUNT("transactions"."id") AS "transaction_count",
			COALESCE(SUM("transactions"."amount"), 0) AS "total_amount"`).
		Joins(`LEFT JOIN "transactions" ON "transactions"."category_id" = "categories"."id"
  AND "transactions"."deleted_at" IS NULL`).
		Where(`"categories"."organization_id" = ?`, orgID).
		Group(`"categories"."id", "categories"."name"`).
		Scan(&stats).Error
	return stats, err
}

func (r *CategoryRepository) GetMonthlyTotals(ctx context.Context, orgID string, months int) ([]*domain.CategoryMonthlyTotal, error) {
	var totals []*domain.CategoryMonthlyTotal
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select(`"category_id",
			TO_CHAR(DATE_TRUNC('month', "occurred_at"), 'YYYY-MM') AS "month",
			SUM("amount") AS "total_amount",
			COUNT(*) AS "count"`).
		Where(`"organization_id" = ?`, orgID).
		Where(`"category_id" IS NOT NULL`).
		Where(fmt.Sprintf(`"occurred_at" >= DATE_TRUNC('month', NOW()) - INTERVAL '%d months'`, months)).
		Group(`"category_id", DATE_TRUNC('month', "occurred_at")`).
		Order(`"month" DESC`).
		Scan(&totals).Error
	return totals, err
}
