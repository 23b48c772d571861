package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/expense"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	m := new(model.Expense)
	if err := m.FromDomain(e); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		*e = *m.ToDomain()

		return nil
	})
}

func (r *ExpenseRepository) Find(ctx context.Context, filter *domain.ListExpensesFilter) ([]*domain.Expense, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.SubmitterID != "" {
		db = db.Where(`"submitter_id" = ?`, filter.SubmitterID)
	}
	if filter.Statuses != nil {
		db = db.Where(`"status" IN ?`, filter.Statuses)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("created_at DESC")

	var models []*model.Expense
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.Expense, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Expense, error) {
	m := new(model.Expense)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expense.ErrExpenseNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *domain.Expense) error {
	m := new(model.Expense)
	if err := m.FromDomain(e); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Where(`"organization_id" = ?`, e.OrganizationID).
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return expense.ErrExpenseNotFound
	}

	return nil
}

func (r *ExpenseRepository) UpdateStatus(ctx context.Context, orgID, id, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return expense.ErrExpenseNotFound
	}

	return nil
}
