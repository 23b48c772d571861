package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/core/approval"
	"github.com/chimbuka/mabuku/core/approvalrule"
	"github.com/chimbuka/mabuku/core/categorization"
	"github.com/chimbuka/mabuku/core/category"
	"github.com/chimbuka/mabuku/core/expense"
	"github.com/chimbuka/mabuku/core/inventory"
	"github.com/chimbuka/mabuku/core/invoice"
	"github.com/chimbuka/mabuku/core/transaction"
	"github.com/chimbuka/mabuku/core/user"
	"github.com/chimbuka/mabuku/internal/store/postgres"
	"github.com/chimbuka/mabuku/pkg/log"
)

type HandlerDeps struct {
	ApprovalRuleService   *approvalrule.Service
	ApprovalService       *approval.Service
	CategoryService       *category.Service
	CategorizationService *categorization.Service
	ExpenseService        *expense.Service
	TransactionService    *transaction.Service
	InvoiceService        *invoice.Service
	InventoryService      *inventory.Service
	UserService           *user.Service
	AuditLogRepository    *postgres.AuditLogRepository

	Logger log.Logger
}

// Handler exposes the core services over REST.
type Handler struct {
	approvalRuleService   *approvalrule.Service
	approvalService       *approval.Service
	categoryService       *category.Service
	categorizationService *categorization.Service
	expenseService        *expense.Service
	transactionService    *transaction.Service
	invoiceService        *invoice.Service
	inventoryService      *inventory.Service
	userService           *user.Service
	auditLogRepository    *postgres.AuditLogRepository

	logger log.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		approvalRuleService:   deps.ApprovalRuleService,
		approvalService:       deps.ApprovalService,
		categoryService:       deps.CategoryService,
		categorizationService: deps.CategorizationService,
		expenseService:        deps.ExpenseService,
		transactionService:    deps.TransactionService,
		invoiceService:        deps.InvoiceService,
		inventoryService:      deps.InventoryService,
		userService:           deps.UserService,
		auditLogRepository:    deps.AuditLogRepository,
		logger:                deps.Logger,
	}
}

// Register mounts every route under the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/approval-rules", h.createApprovalRule)
	rg.GET("/approval-rules", h.listApprovalRules)
	rg.GET("/approval-rules/default", h.listDefaultApprovalRules)
	rg.POST("/approval-rules/evaluate", h.evaluateApprovalRules)
	rg.GET("/approval-rules/:id", h.getApprovalRule)
	rg.PUT("/approval-rules/:id", h.updateApprovalRule)
	rg.DELETE("/approval-rules/:id", h.deleteApprovalRule)

	rg.POST("/expenses", h.createExpense)
	rg.GET("/expenses", h.listExpenses)
	rg.GET("/expenses/:id", h.getExpense)
	rg.PUT("/expenses/:id", h.updateExpense)
	rg.POST("/expenses/:id/submit", h.submitExpense)

	rg.GET("/approvals", h.listApprovalRequests)
	rg.GET("/approvals/stats", h.getApprovalStats)
	rg.GET("/approvals/:id", h.getApprovalRequest)
	rg.GET("/approvals/:id/history", h.listApprovalHistory)
	rg.POST("/approvals/:id/cancel", h.cancelApprovalRequest)

	rg.GET("/approval-tasks", h.listApprovalTasks)
	rg.GET("/approval-tasks/pending", h.listPendingApprovalTasks)
	rg.POST("/approval-tasks/bulk-decide", h.bulkDecideApprovalTasks)
	rg.POST("/approval-tasks/:id/decide", h.decideApprovalTask)

	rg.POST("/categories", h.createCategory)
	rg.GET("/categories", h.listCategories)
	rg.GET("/categories/hierarchy", h.getCategoryHierarchy)
	rg.GET("/categories/stats", h.getCategoryStats)
	rg.GET("/categories/analytics", h.getCategoryAnalytics)
	rg.POST("/categories/defaults", h.initializeDefaultCategories)
	rg.GET("/categories/:id", h.getCategory)
	rg.PUT("/categories/:id", h.updateCategory)
	rg.DELETE("/categories/:id", h.deleteCategory)
	rg.GET("/categories/:id/ancestors", h.getCategoryAncestors)

	rg.POST("/category-rules", h.createCategoryRule)
	rg.GET("/category-rules", h.listCategoryRules)
	rg.GET("/category-rules/:id", h.getCategoryRule)
	rg.PUT("/category-rules/:id", h.updateCategoryRule)
	rg.DELETE("/category-rules/:id", h.deleteCategoryRule)

	rg.POST("/transactions", h.createTransaction)
	rg.GET("/transactions", h.listTransactions)
	rg.POST("/transactions/categorize", h.bulkCategorizeTransactions)
	rg.POST("/transactions/auto-categorize", h.autoCategorizeTransactions)
	rg.GET("/transactions/:id", h.getTransaction)
	rg.PUT("/transactions/:id/category", h.linkTransactionCategory)
	rg.DELETE("/transactions/:id/category", h.unlinkTransactionCategory)
	rg.POST("/transactions/:id/categorize", h.categorizeTransaction)
	rg.GET("/transactions/:id/suggestions", h.listTransactionSuggestions)
	rg.DELETE("/transactions/:id/suggestions", h.removeTransactionSuggestions)

	rg.POST("/suggestions/bulk-apply", h.bulkApplySuggestions)
	rg.POST("/suggestions/:id/apply", h.applySuggestion)

	rg.POST("/invoices", h.createInvoice)
	rg.GET("/invoices", h.listInvoices)
	rg.POST("/invoices/classify-item", h.classifyInvoiceItem)
	rg.GET("/invoices/:id", h.getInvoice)
	rg.PUT("/invoices/:id", h.updateInvoice)
	rg.POST("/invoices/:id/issue", h.issueInvoice)
	rg.POST("/invoices/:id/pay", h.payInvoice)
	rg.POST("/invoices/:id/void", h.voidInvoice)
	rg.POST("/invoices/:id/submit", h.submitInvoiceToZRA)

	rg.POST("/inventory/items", h.createInventoryItem)
	rg.GET("/inventory/items", h.listInventoryItems)
	rg.GET("/inventory/items/low-stock", h.listLowStockItems)
	rg.GET("/inventory/items/:id", h.getInventoryItem)
	rg.PUT("/inventory/items/:id", h.updateInventoryItem)
	rg.POST("/inventory/movements", h.recordStockMovement)
	rg.GET("/inventory/movements", h.listStockMovements)

	rg.POST("/users", h.createUser)
	rg.GET("/users", h.listUsers)
	rg.GET("/users/:id", h.getUser)
	rg.PUT("/users/:id", h.updateUser)
	rg.DELETE("/users/:id", h.deactivateUser)

	rg.GET("/audit-logs", h.listAuditLogs)
}
