package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) createTransaction(c *gin.Context) {
	var txn domain.Transaction
	if err := c.ShouldBindJSON(&txn); err != nil {
		h.invalidPayload(c, err)
		return
	}
	txn.OrganizationID = orgID(c)

	if err := h.transactionService.Create(c.Request.Context(), &txn); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *Handler) listTransactions(c *gin.Context) {
	size, offset := pagination(c)
	transactions, err := h.transactionService.Find(c.Request.Context(), &domain.ListTransactionsFilter{
		OrganizationID: orgID(c),
		CategoryIDs:    c.QueryArray("category_id"),
		Uncategorized:  c.Query("uncategorized") == "true",
		Q:              c.Query("q"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (h *Handler) getTransaction(c *gin.Context) {
	txn, err := h.transactionService.GetByID(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

type linkCategoryRequest struct {
	CategoryID string `json:"category_id"`
}

func (h *Handler) linkTransactionCategory(c *gin.Context) {
	var body linkCategoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidPayload(c, err)
		return
	}

	if err := h.transactionService.LinkCategory(c.Request.Context(), orgID(c), c.Param("id"), body.CategoryID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) unlinkTransactionCategory(c *gin.Context) {
	if err := h.transactionService.UnlinkCategory(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
