package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/log"
)

type repository interface {
	Create(context.Context, *domain.Expense) error
	Find(context.Context, *domain.ListExpensesFilter) ([]*domain.Expense, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Expense, error)
	Update(context.Context, *domain.Expense) error
	UpdateStatus(ctx context.Context, orgID, id, status string) error
}

// Allowed expense status transitions. Keys are current statuses.
var allowedTransitions = map[string][]string{
	domain.ExpenseStatusDraft:           {domain.ExpenseStatusPendingApproval, domain.ExpenseStatusApproved},
	domain.ExpenseStatusPendingApproval: {domain.ExpenseStatusApproved, domain.ExpenseStatusRejected, domain.ExpenseStatusDraft},
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

func (s *Service) Create(ctx context.Context, expense *domain.Expense) error {
	if err := s.validator.Struct(expense); err != nil {
		return err
	}
	if expense.Status == "" {
		expense.Status = domain.ExpenseStatusDraft
	}
	if expense.Currency == "" {
		expense.Currency = "ZMW"
	}
	return s.repo.Create(ctx, expense)
}

func (s *Service) Find(ctx context.Context, filter *domain.ListExpensesFilter) ([]*domain.Expense, error) {
	return s.repo.Find(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, orgID, id string) (*domain.Expense, error) {
	if id == "" {
		return nil, ErrExpenseIDEmptyParam
	}
	return s.repo.GetByID(ctx, orgID, id)
}

// Update modifies a draft expense. Anything past draft is immutable
// outside of status transitions.
func (s *Service) Update(ctx context.Context, expense *domain.Expense) error {
	if expense.ID == "" {
		return ErrExpenseIDEmptyParam
	}
	existing, err := s.repo.GetByID(ctx, expense.OrganizationID, expense.ID)
	if err != nil {
		return err
	}
	if !existing.IsDraft() {
		return ErrExpenseNotEditable
	}
	expense.Status = existing.Status
	return s.repo.Update(ctx, expense)
}

// UpdateStatus applies a guarded status transition.
func (s *Service) UpdateStatus(ctx context.Context, orgID, id, status string) error {
	existing, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range allowedTransitions[existing.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, existing.Status, status)
	}

	return s.repo.UpdateStatus(ctx, orgID, id, status)
}
