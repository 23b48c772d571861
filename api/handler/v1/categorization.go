package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) createCategoryRule(c *gin.Context) {
	var rule domain.CategoryRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		h.invalidPayload(c, err)
		return
	}
	rule.OrganizationID = orgID(c)

	if err := h.categorizationService.CreateRule(c.Request.Context(), &rule); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *Handler) listCategoryRules(c *gin.Context) {
	size, offset := pagination(c)
	rules, err := h.categorizationService.FindRules(c.Request.Context(), &domain.ListCategoryRulesFilter{
		OrganizationID: orgID(c),
		CategoryID:     c.Query("category_id"),
		ActiveOnly:     c.Query("active_only") == "true",
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category_rules": rules})
}

func (h *Handler) getCategoryRule(c *gin.Context) {
	rule, err := h.categorizationService.GetRule(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *Handler) updateCategoryRule(c *gin.Context) {
	var rule domain.CategoryRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		h.invalidPayload(c, err)
		return
	}
	rule.ID = c.Param("id")
	rule.OrganizationID = orgID(c)

	if err := h.categorizationService.UpdateRule(c.Request.Context(), &rule); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *Handler) deleteCategoryRule(c *gin.Context) {
	if err := h.categorizationService.DeleteRule(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type categorizeRequest struct {
	AutoApply bool `json:"auto_apply"`
}

func (h *Handler) categorizeTransaction(c *gin.Context) {
	var body categorizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.invalidPayload(c, err)
			return
		}
	}

	result, err := h.categorizationService.Categorize(c.Request.Context(), orgID(c), c.Param("id"), body.AutoApply)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type bulkCategorizeRequest struct {
	TransactionIDs []string `json:"transaction_ids"`
	AutoApply      bool     `json:"auto_apply"`
}

func (h *Handler) bulkCategorizeTransactions(c *gin.Context) {
	var body bulkCategorizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidPayload(c, err)
		return
	}

	results := h.categorizationService.BulkCategorize(c.Request.Context(), orgID(c), body.TransactionIDs, body.AutoApply)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type autoCategorizeRequest struct {
	Limit int `json:"limit"`
}

// autoCategorizeTransactions sweeps uncategorized transactions and
// applies only the suggestions the engine is very confident about.
func (h *Handler) autoCategorizeTransactions(c *gin.Context) {
	var body autoCategorizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.invalidPayload(c, err)
			return
		}
	}

	results, err := h.categorizationService.AutoCategorize(c.Request.Context(), orgID(c), body.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) listTransactionSuggestions(c *gin.Context) {
	suggestions, err := h.categorizationService.ListSuggestions(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *Handler) removeTransactionSuggestions(c *gin.Context) {
	if err := h.categorizationService.RemoveSuggestions(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) applySuggestion(c *gin.Context) {
	if err := h.categorizationService.Apply(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type bulkApplyRequest struct {
	SuggestionIDs []string `json:"suggestion_ids"`
}

func (h *Handler) bulkApplySuggestions(c *gin.Context) {
	var body bulkApplyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidPayload(c, err)
		return
	}

	results := h.categorizationService.BulkApply(c.Request.Context(), orgID(c), body.SuggestionIDs)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
