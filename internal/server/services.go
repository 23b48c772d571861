package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/core/approval"
	"github.com/chimbuka/mabuku/core/approvalrule"
	"github.com/chimbuka/mabuku/core/categorization"
	"github.com/chimbuka/mabuku/core/category"
	"github.com/chimbuka/mabuku/core/expense"
	"github.com/chimbuka/mabuku/core/inventory"
	"github.com/chimbuka/mabuku/core/invoice"
	"github.com/chimbuka/mabuku/core/transaction"
	"github.com/chimbuka/mabuku/core/user"
	"github.com/chimbuka/mabuku/internal/cache"
	"github.com/chimbuka/mabuku/internal/queue"
	"github.com/chimbuka/mabuku/internal/store/postgres"
	"github.com/chimbuka/mabuku/pkg/log"
	"github.com/chimbuka/mabuku/plugins/notifiers"
	"github.com/chimbuka/mabuku/plugins/zra"
)

type Services struct {
	ApprovalRuleService   *approvalrule.Service
	ApprovalService       *approval.Service
	CategoryService       *category.Service
	CategorizationService *categorization.Service
	ExpenseService        *expense.Service
	TransactionService    *transaction.Service
	InvoiceService        *invoice.Service
	InventoryService      *inventory.Service
	UserService           *user.Service

	AuditLogRepository *postgres.AuditLogRepository
}

type ServiceDeps struct {
	Config    *Config
	Logger    log.Logger
	Validator *validator.Validate
	Notifier  notifiers.Client
	Queue     *queue.Client
}

// InitServices wires the postgres repositories into the core services.
func InitServices(deps ServiceDeps) (*Services, error) {
	store, err := postgres.NewClient(deps.Config.DB)
	if err != nil {
		return nil, fmt.Errorf("initializing postgres client: %w", err)
	}
	db := store.DB()

	approvalRuleRepository := postgres.NewApprovalRuleRepository(db)
	approvalRepository := postgres.NewApprovalRepository(db)
	categoryRepository := postgres.NewCategoryRepository(db)
	categoryRuleRepository := postgres.NewCategoryRuleRepository(db)
	suggestionRepository := postgres.NewSuggestionRepository(db)
	transactionRepository := postgres.NewTransactionRepository(db)
	expenseRepository := postgres.NewExpenseRepository(db)
	invoiceRepository := postgres.NewInvoiceRepository(db)
	inventoryRepository := postgres.NewInventoryRepository(db)
	userRepository := postgres.NewUserRepository(db)
	auditLogRepository := postgres.NewAuditLogRepository(db)

	sharedCache := cache.New()

	invoiceDeps := invoice.ServiceDeps{
		Repository:   invoiceRepository,
		TaxAuthority: zra.Disabled{},
		Validator:    deps.Validator,
		Logger:       deps.Logger,
		AuditLogger:  auditLogRepository,
	}
	if deps.Config.ZRA != nil {
		zraClient, err := zra.NewClient(deps.Config.ZRA)
		if err != nil {
			return nil, fmt.Errorf("initializing ZRA client: %w", err)
		}
		invoiceDeps.TaxAuthority = zraClient
	}

	approvalRuleService := approvalrule.NewService(approvalrule.ServiceDeps{
		Repository:  approvalRuleRepository,
		Validator:   deps.Validator,
		Logger:      deps.Logger,
		AuditLogger: auditLogRepository,
	})
	expenseService := expense.NewService(expense.ServiceDeps{
		Repository: expenseRepository,
		Validator:  deps.Validator,
		Logger:     deps.Logger,
	})
	userService := user.NewService(user.ServiceDeps{
		Repository: userRepository,
		Validator:  deps.Validator,
		Logger:     deps.Logger,
	})
	approvalService := approval.NewService(approval.ServiceDeps{
		Repository:     approvalRepository,
		RulesEngine:    approvalRuleService,
		ExpenseService: expenseService,
		UserService:    userService,
		Notifier:       deps.Notifier,
		Validator:      deps.Validator,
		Logger:         deps.Logger,
		AuditLogger:    auditLogRepository,
	})
	categoryService := category.NewService(category.ServiceDeps{
		Repository:  categoryRepository,
		Cache:       sharedCache,
		Validator:   deps.Validator,
		Logger:      deps.Logger,
		AuditLogger: auditLogRepository,
	})
	categorizationService := categorization.NewService(categorization.ServiceDeps{
		RuleRepository:        categoryRuleRepository,
		TransactionRepository: transactionRepository,
		SuggestionRepository:  suggestionRepository,
		Validator:             deps.Validator,
		Logger:                deps.Logger,
		AuditLogger:           auditLogRepository,
	})
	transactionService := transaction.NewService(transaction.ServiceDeps{
		Repository: transactionRepository,
		Validator:  deps.Validator,
		Logger:     deps.Logger,
	})
	invoiceService := invoice.NewService(invoiceDeps)
	inventoryService := inventory.NewService(inventory.ServiceDeps{
		Repository:  inventoryRepository,
		Queue:       deps.Queue,
		Cache:       sharedCache,
		Validator:   deps.Validator,
		Logger:      deps.Logger,
		AuditLogger: auditLogRepository,
	})

	return &Services{
		ApprovalRuleService:   approvalRuleService,
		ApprovalService:       approvalService,
		CategoryService:       categoryService,
		CategorizationService: categorizationService,
		ExpenseService:        expenseService,
		TransactionService:    transactionService,
		InvoiceService:        invoiceService,
		InventoryService:      inventoryService,
		UserService:           userService,

		AuditLogRepository: auditLogRepository,
	}, nil
}
