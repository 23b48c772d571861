package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chimbuka/mabuku/core/invoice"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	m := new(model.Invoice)
	if err := m.FromDomain(inv); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}

		newInvoice, err := m.ToDomain()
		if err != nil {
			return err
		}
		*inv = *newInvoice

		return nil
	})
}

func (r *InvoiceRepository) Find(ctx context.Context, filter *domain.ListInvoicesFilter) ([]*domain.Invoice, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.Statuses != nil {
		db = db.Where(`"status" IN ?`, filter.Statuses)
	}
	if filter.Q != "" {
		db = db.Where(db.Session(&gorm.Session{NewDB: true}).
			Where(`"number" ILIKE ?`, likePattern(filter.Q)).
			Or(`"customer_name" ILIKE ?`, likePattern(filter.Q)),
		)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("created_at DESC")

	var models []*model.Invoice
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.Invoice, 0, len(models))
	for _, m := range models {
		inv, err := m.ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, inv)
	}

	return records, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Invoice, error) {
	m := new(model.Invoice)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, err
	}

	return m.ToDomain()
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	m := new(model.Invoice)
	if err := m.FromDomain(inv); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Where(`"organization_id" = ?`, inv.OrganizationID).
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invoice.ErrInvoiceNotFound
	}

	return nil
}

// NextNumber allocates the next sequential invoice number for the
// organization under row-level locking, so concurrent issuance never
// produces duplicates.
func (r *InvoiceRepository) NextNumber(ctx context.Context, orgID, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter := &model.InvoiceCounter{OrganizationID: orgID, Prefix: prefix}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(counter).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(`"organization_id" = ?`, orgID).
			Where(`"prefix" = ?`, prefix).
			First(counter).Error; err != nil {
			return err
		}

		counter.LastValue++
		if err := tx.Model(counter).Update("last_value", counter.LastValue).Error; err != nil {
			return err
		}

		number = fmt.Sprintf("%s-%06d", prefix, counter.LastValue)
		return nil
	})

	return number, err
}
