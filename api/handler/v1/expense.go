package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) createExpense(c *gin.Context) {
	var exp domain.Expense
	if err := c.ShouldBindJSON(&exp); err != nil {
		h.invalidPayload(c, err)
		return
	}
	exp.OrganizationID = orgID(c)
	if exp.SubmitterID == "" {
		exp.SubmitterID = actorID(c)
	}

	if err := h.expenseService.Create(c.Request.Context(), &exp); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}

func (h *Handler) listExpenses(c *gin.Context) {
	size, offset := pagination(c)
	expenses, err := h.expenseService.Find(c.Request.Context(), &domain.ListExpensesFilter{
		OrganizationID: orgID(c),
		SubmitterID:    c.Query("submitter_id"),
		Statuses:       c.QueryArray("status"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (h *Handler) getExpense(c *gin.Context) {
	exp, err := h.expenseService.GetByID(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

func (h *Handler) updateExpense(c *gin.Context) {
	var exp domain.Expense
	if err := c.ShouldBindJSON(&exp); err != nil {
		h.invalidPayload(c, err)
		return
	}
	exp.ID = c.Param("id")
	exp.OrganizationID = orgID(c)

	if err := h.expenseService.Update(c.Request.Context(), &exp); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// submitExpense opens the approval workflow for a draft expense. A 200
// with a null request means no rule matched and the expense was
// auto-approved.
func (h *Handler) submitExpense(c *gin.Context) {
	request, err := h.approvalService.Submit(c.Request.Context(), orgID(c), c.Param("id"), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if request == nil {
		c.JSON(http.StatusOK, gin.H{"status": domain.ExpenseStatusApproved, "request": nil})
		return
	}
	c.JSON(http.StatusCreated, request)
}
