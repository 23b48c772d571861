package transaction

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/log"
)

type repository interface {
	Create(context.Context, *domain.Transaction) error
	Find(context.Context, *domain.ListTransactionsFilter) ([]*domain.Transaction, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Transaction, error)
	Update(context.Context, *domain.Transaction) error
	SetCategory(ctx context.Context, orgID, id, categoryID string) error
	ListUncategorized(ctx context.Context, orgID string, limit int) ([]*domain.Transaction, error)
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

	TimeNow func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps.Repository,
		deps.Validator,
		deps.Logger,
		time.Now,
	}
}

func (s *Service) Create(ctx context.Context, txn *domain.Transaction) error {
	if err := s.validator.Struct(txn); err != nil {
		return err
	}
	if txn.Currency == "" {
		txn.Currency = "ZMW"
	}
	return s.repo.Create(ctx, txn)
}

func (s *Service) Find(ctx context.Context, filter *domain.ListTransactionsFilter) ([]*domain.Transaction, error) {
	return s.repo.Find(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, orgID, id string) (*domain.Transaction, error) {
	if id == "" {
		return nil, ErrTransactionIDEmpty
	}
	return s.repo.GetByID(ctx, orgID, id)
}

// LinkCategory assigns a category to an uncategorized transaction.
func (s *Service) LinkCategory(ctx context.Context, orgID, id, categoryID string) error {
	if categoryID == "" {
		return ErrCategoryIDEmptyParam
	}
	txn, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if txn.IsCategorized() {
		return ErrAlreadyLinked
	}
	return s.repo.SetCategory(ctx, orgID, id, categoryID)
}

// UnlinkCategory clears a transaction's category.
func (s *Service) UnlinkCategory(ctx context.Context, orgID, id string) error {
	if _, err := s.repo.GetByID(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.SetCategory(ctx, orgID, id, "")
}

func (s *Service) ListUncategorized(ctx context.Context, orgID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListUncategorized(ctx, orgID, limit)
}
