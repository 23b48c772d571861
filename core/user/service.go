package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/log"
)

type repository interface {
	Create(context.Context, *domain.User) error
	Find(context.Context, *domain.ListUsersFilter) ([]*domain.User, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, orgID, email string) (*domain.User, error)
	Update(context.Context, *domain.User) error
}

type ServiceDeps struct {
	Repository repository

	Validator *validator.Validate
	Logger    log.Logger
}

type Service struct {
	repo repository

	validator *validator.Validate
	logger    log.Logger
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps.Repository,
		deps.Validator,
		deps.Logger,
	}
}

func (s *Service) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := s.validator.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUserDetail, err)
	}

	existing, err := s.repo.GetByEmail(ctx, u.OrganizationID, u.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if existing != nil {
		return ErrDuplicateEmail
	}

	u.IsActive = true
	return s.repo.Create(ctx, u)
}

func (s *Service) Find(ctx context.Context, filter *domain.ListUsersFilter) ([]*domain.User, error) {
	return s.repo.Find(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, orgID, id string) (*domain.User, error) {
	if id == "" {
		return nil, ErrUserIDEmptyParam
	}
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) Update(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		return ErrUserIDEmptyParam
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := s.validator.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUserDetail, err)
	}
	return s.repo.Update(ctx, u)
}

func (s *Service) Deactivate(ctx context.Context, orgID, id string) error {
	u, err := s.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	u.IsActive = false
	return s.repo.Update(ctx, u)
}

// FindActiveByRoles resolves the active holders of any of the given
// roles; used for approver resolution.
func (s *Service) FindActiveByRoles(ctx context.Context, orgID string, roles []string) ([]*domain.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	return s.repo.Find(ctx, &domain.ListUsersFilter{
		OrganizationID: orgID,
		Roles:          roles,
		ActiveOnly:     true,
	})
}
