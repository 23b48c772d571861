package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) createCategory(c *gin.Context) {
	var cat domain.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		h.invalidPayload(c, err)
		return
	}
	cat.OrganizationID = orgID(c)

	if err := h.categoryService.Create(c.Request.Context(), &cat); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) listCategories(c *gin.Context) {
	size, offset := pagination(c)
	categories, err := h.categoryService.Find(c.Request.Context(), &domain.ListCategoriesFilter{
		OrganizationID: orgID(c),
		ParentID:       c.Query("parent_id"),
		ActiveOnly:     c.Query("active_only") == "true",
		Q:              c.Query("q"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) getCategory(c *gin.Context) {
	cat, err := h.categoryService.GetByID(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) updateCategory(c *gin.Context) {
	var cat domain.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		h.invalidPayload(c, err)
		return
	}
	cat.ID = c.Param("id")
	cat.OrganizationID = orgID(c)

	if err := h.categoryService.Update(c.Request.Context(), &cat); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getCategoryHierarchy(c *gin.Context) {
	nodes, err := h.categoryService.Hierarchy(c.Request.Context(), orgID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": nodes})
}

func (h *Handler) getCategoryAncestors(c *gin.Context) {
	ctx := c.Request.Context()
	ancestors, err := h.categoryService.Ancestors(ctx, orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	path, err := h.categoryService.Path(ctx, orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ancestors": ancestors, "path": path})
}

func (h *Handler) getCategoryStats(c *gin.Context) {
	stats, err := h.categoryService.GetStats(c.Request.Context(), orgID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) getCategoryAnalytics(c *gin.Context) {
	totals, err := h.categoryService.GetAnalytics(c.Request.Context(), orgID(c), queryInt(c, "months", 6))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"monthly_totals": totals})
}

// initializeDefaultCategories seeds the standard Zambian SME chart of
// categories for a fresh organization.
func (h *Handler) initializeDefaultCategories(c *gin.Context) {
	categories, err := h.categoryService.InitializeDefaults(c.Request.Context(), orgID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"categories": categories})
}
