package postgres

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/user"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := new(model.User)
	if err := m.FromDomain(u); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		*u = *m.ToDomain()

		return nil
	})
}

func (r *UserRepository) Find(ctx context.Context, filter *domain.ListUsersFilter) ([]*domain.User, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.Roles != nil {
		db = db.Where(`"role" = ANY(?)`, pq.Array(filter.Roles))
	}
	if filter.ActiveOnly {
		db = db.Where(`"is_active" = ?`, true)
	}
	if filter.Q != "" {
		db = db.Where(db.Session(&gorm.Session{NewDB: true}).
			Where(`"name" ILIKE ?`, likePattern(filter.Q)).
			Or(`"email" ILIKE ?`, likePattern(filter.Q)),
		)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("name ASC")

	var models []*model.User
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.User, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

func (r *UserRepository) GetByID(ctx context.Context, orgID, id string) (*domain.User, error) {
	m := new(model.User)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, orgID, email string) (*domain.User, error) {
	m := new(model.User)
	if err := r.db.WithContext(ctx).
		Where(`"organization_id" = ?`, orgID).
		Where(`LOWER("email") = LOWER(?)`, email).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	return m.ToDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := new(model.User)
	if err := m.FromDomain(u); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Where(`"organization_id" = ?`, u.OrganizationID).
		Select("email", "name", "role", "is_active").
		Updates(map[string]interface{}{
			"email":     m.Email,
			"name":      m.Name,
			"role":      m.Role,
			"is_active": m.IsActive,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}
