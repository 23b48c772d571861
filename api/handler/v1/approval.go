package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) listApprovalRequests(c *gin.Context) {
	size, offset := pagination(c)
	requests, err := h.approvalService.FindRequests(c.Request.Context(), &domain.ListApprovalRequestsFilter{
		OrganizationID: orgID(c),
		RequesterID:    c.Query("requester_id"),
		ExpenseID:      c.Query("expense_id"),
		Statuses:       c.QueryArray("status"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approval_requests": requests})
}

func (h *Handler) getApprovalRequest(c *gin.Context) {
	request, err := h.approvalService.GetRequest(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *Handler) listApprovalHistory(c *gin.Context) {
	// resolve through the org-scoped request first so history is not
	// readable across tenants.
	request, err := h.approvalService.GetRequest(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	history, err := h.approvalService.ListHistory(c.Request.Context(), request.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *Handler) cancelApprovalRequest(c *gin.Context) {
	request, err := h.approvalService.Cancel(c.Request.Context(), orgID(c), c.Param("id"), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *Handler) getApprovalStats(c *gin.Context) {
	stats, err := h.approvalService.GetStats(c.Request.Context(), orgID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listApprovalTasks(c *gin.Context) {
	size, offset := pagination(c)
	tasks, err := h.approvalService.FindTasks(c.Request.Context(), &domain.ListApprovalTasksFilter{
		OrganizationID: orgID(c),
		ApproverID:     c.Query("approver_id"),
		Statuses:       c.QueryArray("status"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approval_tasks": tasks})
}

// listPendingApprovalTasks is the caller's own approval inbox.
func (h *Handler) listPendingApprovalTasks(c *gin.Context) {
	tasks, err := h.approvalService.ListPendingTasks(c.Request.Context(), orgID(c), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approval_tasks": tasks})
}

type decideRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (h *Handler) decideApprovalTask(c *gin.Context) {
	var body decideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidPayload(c, err)
		return
	}

	request, err := h.approvalService.Decide(c.Request.Context(), orgID(c), c.Param("id"), actorID(c), body.Decision, body.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

type bulkDecideRequest struct {
	TaskIDs  []string `json:"task_ids"`
	Decision string   `json:"decision"`
	Comment  string   `json:"comment"`
}

// bulkDecideApprovalTasks always returns 200 with a per-task outcome;
// individual failures do not fail the batch.
func (h *Handler) bulkDecideApprovalTasks(c *gin.Context) {
	var body bulkDecideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidPayload(c, err)
		return
	}

	results := h.approvalService.BulkDecide(c.Request.Context(), orgID(c), body.TaskIDs, actorID(c), body.Decision, body.Comment)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
