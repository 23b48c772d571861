package v1

import (
	"errors"
	"net/http"
	"strconv"

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
	"github.com/chimbuka/mabuku/pkg/audit"
)

var notFoundErrors = []error{
	approval.ErrRequestNotFound,
	approval.ErrTaskNotFound,
	approvalrule.ErrRuleNotFound,
	categorization.ErrRuleNotFound,
	categorization.ErrTransactionNotFound,
	categorization.ErrSuggestionNotFound,
	category.ErrCategoryNotFound,
	category.ErrParentNotFound,
	expense.ErrExpenseNotFound,
	inventory.ErrItemNotFound,
	inventory.ErrMovementNotFound,
	invoice.ErrInvoiceNotFound,
	transaction.ErrTransactionNotFound,
	user.ErrUserNotFound,
}

// conflictErrors cover duplicates and already-linked entities only;
// state-transition guards are bad requests, not conflicts.
var conflictErrors = []error{
	approvalrule.ErrRuleDuplicateName,
	categorization.ErrRuleDuplicateName,
	categorization.ErrTransactionCategorized,
	category.ErrCategoryDuplicateName,
	category.ErrCategoryInUse,
	inventory.ErrDuplicateSKU,
	transaction.ErrAlreadyLinked,
	user.ErrDuplicateEmail,
}

var badRequestErrors = []error{
	approval.ErrExpenseNotDraft,
	approval.ErrAlreadySubmitted,
	approval.ErrTaskNotPending,
	approval.ErrRequestNotPending,
	approval.ErrRequestIDEmptyParam,
	approval.ErrTaskIDEmptyParam,
	approval.ErrInvalidDecision,
	approvalrule.ErrRuleIDEmptyParam,
	approvalrule.ErrInvalidRule,
	approvalrule.ErrInvalidRuleContext,
	categorization.ErrRuleIDEmptyParam,
	categorization.ErrInvalidRule,
	category.ErrCategoryIDEmptyParam,
	category.ErrCyclicHierarchy,
	expense.ErrInvalidStatusChange,
	expense.ErrExpenseNotEditable,
	expense.ErrExpenseIDEmptyParam,
	inventory.ErrItemIDEmptyParam,
	inventory.ErrInvalidBarcode,
	inventory.ErrInvalidMovement,
	inventory.ErrInsufficientStock,
	inventory.ErrMovementNotPending,
	invoice.ErrInvoiceIDEmptyParam,
	invoice.ErrInvalidInvoice,
	invoice.ErrInvoiceNotDraft,
	invoice.ErrInvoiceNotIssued,
	invoice.ErrAlreadySubmitted,
	transaction.ErrTransactionIDEmpty,
	transaction.ErrCategoryIDEmptyParam,
	user.ErrUserIDEmptyParam,
	user.ErrInvalidUserDetail,
	user.ErrUserDeactivated,
}

// respondError translates core sentinel errors into HTTP statuses.
// Anything unrecognized is a 500 with the detail logged, not leaked.
func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, approval.ErrActionForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func (h *Handler) invalidPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func orgID(c *gin.Context) string {
	return audit.OrganizationID(c.Request.Context())
}

func actorID(c *gin.Context) string {
	return audit.ActorID(c.Request.Context())
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}

func pagination(c *gin.Context) (size, offset int) {
	return queryInt(c, "size", 0), queryInt(c, "offset", 0)
}
