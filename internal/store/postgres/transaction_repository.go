package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/transaction"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	m := new(model.Transaction)
	if err := m.FromDomain(t); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		*t = *m.ToDomain()

		return nil
	})
}

func (r *TransactionRepository) Find(ctx context.Context, filter *domain.ListTransactionsFilter) ([]*domain.Transaction, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.CategoryIDs != nil {
		db = db.Where(`"category_id" IN ?`, filter.CategoryIDs)
	}
	if filter.Uncategorized {
		db = db.Where(`"category_id" IS NULL`)
	}
	if filter.Q != "" {
		db = db.Where(db.Session(&gorm.Session{NewDB: true}).
			Where(`"description" ILIKE ?`, likePattern(filter.Q)).
			Or(`"counterparty" ILIKE ?`, likePattern(filter.Q)).
			Or(`"reference" ILIKE ?`, likePattern(filter.Q)),
		)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("occurred_at DESC")

	var models []*model.Transaction
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.Transaction, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Transaction, error) {
	m := new(model.Transaction)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	m := new(model.Transaction)
	if err := m.FromDomain(t); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Where(`"organization_id" = ?`, t.OrganizationID).
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return transaction.ErrTransactionNotFound
	}

	return nil
}

func (r *TransactionRepository) SetCategory(ctx context.Context, orgID, id, categoryID string) error {
	update := map[string]interface{}{"category_id": nil}
	if categoryID != "" {
		update["category_id"] = categoryID
	}

	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		Updates(update)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return transaction.ErrTransactionNotFound
	}

	return nil
}

func (r *TransactionRepository) ListUncategorized(ctx context.Context, orgID string, limit int) ([]*domain.Transaction, error) {
	db := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"category_id" IS NULL`).
		Order("occurred_at DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	var models []*model.Transaction
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.Transaction, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

// FindSimilar returns other transactions sharing the counterparty, or
// failing that a description substring, most recent first. Used by the
// frequency heuristic.
func (r *TransactionRepository) FindSimilar(ctx context.Context, txn *domain.Transaction, limit int) ([]*domain.Transaction, error) {
	db := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, txn.OrganizationID).
		Where(`"id" != ?`, txn.ID)

	if txn.Counterparty != "" {
		db = db.Where(`LOWER("counterparty") = LOWER(?)`, txn.Counterparty)
	} else if txn.Description != "" {
		db = db.Where(`"description" ILIKE ?`, likePattern(txn.Description))
	} else {
		return nil, nil
	}

	if limit > 0 {
		db = db.Limit(limit)
	}
	db = db.Order("occurred_at DESC")

	var models []*model.Transaction
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.Transaction, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}
