package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/core/approvalrule"
	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) createApprovalRule(c *gin.Context) {
	var rule domain.ApprovalRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		h.invalidPayload(c, err)
		return
	}
	rule.OrganizationID = orgID(c)

	if err := h.approvalRuleService.Create(c.Request.Context(), &rule); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *Handler) listApprovalRules(c *gin.Context) {
	size, offset := pagination(c)
	rules, err := h.approvalRuleService.Find(c.Request.Context(), &domain.ListApprovalRulesFilter{
		OrganizationID: orgID(c),
		ActiveOnly:     c.Query("active_only") == "true",
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approval_rules": rules})
}

func (h *Handler) getApprovalRule(c *gin.Context) {
	rule, err := h.approvalRuleService.GetByID(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *Handler) updateApprovalRule(c *gin.Context) {
	var rule domain.ApprovalRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		h.invalidPayload(c, err)
		return
	}
	rule.ID = c.Param("id")
	rule.OrganizationID = orgID(c)

	if err := h.approvalRuleService.Update(c.Request.Context(), &rule); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *Handler) deleteApprovalRule(c *gin.Context) {
	if err := h.approvalRuleService.Delete(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listDefaultApprovalRules returns the starter rule set a new
// organization can adopt before writing its own.
func (h *Handler) listDefaultApprovalRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"approval_rules": approvalrule.DefaultRules(orgID(c))})
}

// evaluateApprovalRules dry-runs the rule set against an arbitrary fact
// set without touching any expense.
func (h *Handler) evaluateApprovalRules(c *gin.Context) {
	var facts map[string]interface{}
	if err := c.ShouldBindJSON(&facts); err != nil {
		h.invalidPayload(c, err)
		return
	}

	requirements, err := h.approvalRuleService.Evaluate(c.Request.Context(), orgID(c), facts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requirements": requirements})
}
