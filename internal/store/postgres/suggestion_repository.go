package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/categorization"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
)

type SuggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) *SuggestionRepository {
	return &SuggestionRepository{db}
}

// ReplaceForTransaction swaps the transaction's suggestion set in one
// transaction: existing rows are removed first so re-evaluation never
// accumulates stale candidates.
func (r *SuggestionRepository) ReplaceForTransaction(ctx context.Context, transactionID string, suggestions []*domain.CategorySuggestion) error {
	models := make([]*model.CategorySuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		m := new(model.CategorySuggestion)
		if err := m.FromDomain(s); err != nil {
			return err
		}
		models = append(models, m)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(`"transaction_id" = ?`, transactionID).
			Delete(&model.CategorySuggestion{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(models).Error; err != nil {
			return err
		}

		for i, m := range models {
			*suggestions[i] = *m.ToDomain()
		}

		return nil
	})
}

func (r *SuggestionRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.CategorySuggestion, error) {
	var models []*model.CategorySuggestion
	if err := r.db.WithContext(ctx).
		Where(`"transaction_id" = ?`, transactionID).
		Order("score DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.CategorySuggestion, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

func (r *SuggestionRepository) GetByID(ctx context.Context, orgID, id string) (*domain.CategorySuggestion, error) {
	m := new(model.CategorySuggestion)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, categorization.ErrSuggestionNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *SuggestionRepository) Update(ctx context.Context, suggestion *domain.CategorySuggestion) error {
	m := new(model.CategorySuggestion)
	if err := m.FromDomain(suggestion); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Select("accepted").
		Updates(map[string]interface{}{"accepted": m.Accepted})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return categorization.ErrSuggestionNotFound
	}

	return nil
}

func (r *SuggestionRepository) DeleteByTransaction(ctx context.Context, transactionID string) error {
	return r.db.WithContext(ctx).
		Where(`"transaction_id" = ?`, transactionID).
		Delete(&model.CategorySuggestion{}).Error
}

// DeleteRejectedBefore purges suggestions the user rejected that have not
// been touched since the cutoff. Spans all organizations; used by the
// cleanup job.
func (r *SuggestionRepository) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where(`"accepted" = ?`, false).
		Where(`"updated_at" < ?`, cutoff).
		Delete(&model.CategorySuggestion{})
	return result.RowsAffected, result.Error
}
