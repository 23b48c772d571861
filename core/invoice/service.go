package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/pkg/log"
)

const (
	AuditKeyCreate = "invoice.create"
	AuditKeyIssue  = "invoice.issue"
	AuditKeyVoid   = "invoice.void"
)

type repository interface {
	Create(context.Context, *domain.Invoice) error
	Find(context.Context, *domain.ListInvoicesFilter) ([]*domain.Invoice, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Invoice, error)
	Update(context.Context, *domain.Invoice) error
	NextNumber(ctx context.Context, orgID, prefix string) (string, error)
}

// taxAuthority is the ZRA smart-invoice integration; implemented by
// plugins/zra.
type taxAuthority interface {
	SubmitInvoice(ctx context.Context, invoice *domain.Invoice) (reference string, err error)
	ClassifyItem(ctx context.Context, description string) (vatClass string, err error)
}

type ServiceDeps struct {
	Repository   repository
	TaxAuthority taxAuthority

	Validator   *validator.Validate
	Logger      log.Logger
	AuditLogger audit.AuditLogger
}

type Service struct {
	repo         repository
	taxAuthority taxAuthority

	validator   *validator.Validate
	logger      log.Logger
	auditLogger audit.AuditLogger

	TimeNow func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps.Repository,
		deps.TaxAuthority,
		deps.Validator,
		deps.Logger,
		deps.AuditLogger,
		time.Now,
	}
}

func (s *Service) Create(ctx context.Context, inv *domain.Invoice) error {
	if err := s.validator.Struct(inv); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInvoice, err)
	}

	inv.Status = domain.InvoiceStatusDraft
	if inv.Currency == "" {
		inv.Currency = "ZMW"
	}
	ComputeTotals(inv)

	number, err := s.repo.NextNumber(ctx, inv.OrganizationID, "INV")
	if err != nil {
		return fmt.Errorf("allocating invoice number: %w", err)
	}
	inv.Number = number

	if err := s.repo.Create(ctx, inv); err != nil {
		return err
	}
	s.auditAsync(ctx, AuditKeyCreate, inv)
	return nil
}

func (s *Service) Find(ctx context.Context, filter *domain.ListInvoicesFilter) ([]*domain.Invoice, error) {
	return s.repo.Find(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, orgID, id string) (*domain.Invoice, error) {
	if id == "" {
		return nil, ErrInvoiceIDEmptyParam
	}
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) Update(ctx context.Context, inv *domain.Invoice) error {
	if inv.ID == "" {
		return ErrInvoiceIDEmptyParam
	}
	existing, err := s.repo.GetByID(ctx, inv.OrganizationID, inv.ID)
	if err != nil {
		return err
	}
	if !existing.IsDraft() {
		return ErrInvoiceNotDraft
	}

	inv.Status = existing.Status
	inv.Number = existing.Number
	ComputeTotals(inv)
	return s.repo.Update(ctx, inv)
}

// Issue finalizes a draft invoice and submits it to ZRA in the
// background. Submission failures are logged, not propagated; the
// invoice stays issued and can be re-submitted.
func (s *Service) Issue(ctx context.Context, orgID, id string) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsDraft() {
		return nil, ErrInvoiceNotDraft
	}

	now := s.TimeNow()
	inv.Status = domain.InvoiceStatusIssued
	inv.IssuedAt = &now
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.auditAsync(ctx, AuditKeyIssue, map[string]interface{}{"id": inv.ID, "number": inv.Number})

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.SubmitToZRA(ctx, orgID, id); err != nil {
			s.logger.Error(ctx, "background ZRA submission failed", "invoice_id", id, "error", err)
		}
	}()

	return inv, nil
}

// SubmitToZRA pushes an issued invoice to the tax authority and stores
// the returned reference.
func (s *Service) SubmitToZRA(ctx context.Context, orgID, id string) error {
	inv, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if inv.ZRAReference != "" {
		return ErrAlreadySubmitted
	}

	reference, err := s.taxAuthority.SubmitInvoice(ctx, inv)
	if err != nil {
		return fmt.Errorf("submitting invoice %s to ZRA: %w", inv.Number, err)
	}

	now := s.TimeNow()
	inv.ZRAReference = reference
	inv.ZRASubmittedAt = &now
	return s.repo.Update(ctx, inv)
}

// ClassifyItem asks ZRA for the VAT class of an item description,
// defaulting to standard when the lookup fails.
func (s *Service) ClassifyItem(ctx context.Context, description string) string {
	vatClass, err := s.taxAuthority.ClassifyItem(ctx, description)
	if err != nil {
		s.logger.Warn(ctx, "item classification lookup failed, defaulting to standard rate", "error", err)
		return domain.VATClassStandard
	}
	return vatClass
}

func (s *Service) MarkPaid(ctx context.Context, orgID, id string) (*domain.Invoice, error) {
	return s.transition(ctx, orgID, id, domain.InvoiceStatusIssued, domain.InvoiceStatusPaid, "")
}

func (s *Service) Void(ctx context.Context, orgID, id string) (*domain.Invoice, error) {
	return s.transition(ctx, orgID, id, domain.InvoiceStatusIssued, domain.InvoiceStatusVoid, AuditKeyVoid)
}

func (s *Service) transition(ctx context.Context, orgID, id, from, to, auditKey string) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != from {
		return nil, ErrInvoiceNotIssued
	}
	inv.Status = to
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	if auditKey != "" {
		s.auditAsync(ctx, auditKey, map[string]interface{}{"id": inv.ID, "number": inv.Number})
	}
	return inv, nil
}

func (s *Service) auditAsync(ctx context.Context, key string, data interface{}) {
	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, key, data); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()
}
