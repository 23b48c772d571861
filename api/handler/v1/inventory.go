package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) createInventoryItem(c *gin.Context) {
	var item domain.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		h.invalidPayload(c, err)
		return
	}
	item.OrganizationID = orgID(c)

	if err := h.inventoryService.CreateItem(c.Request.Context(), &item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) listInventoryItems(c *gin.Context) {
	size, offset := pagination(c)
	items, err := h.inventoryService.FindItems(c.Request.Context(), &domain.ListInventoryItemsFilter{
		OrganizationID: orgID(c),
		CategoryID:     c.Query("category_id"),
		LowStockOnly:   c.Query("low_stock_only") == "true",
		Q:              c.Query("q"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) getInventoryItem(c *gin.Context) {
	item, err := h.inventoryService.GetItemByID(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) updateInventoryItem(c *gin.Context) {
	var item domain.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		h.invalidPayload(c, err)
		return
	}
	item.ID = c.Param("id")
	item.OrganizationID = orgID(c)

	if err := h.inventoryService.UpdateItem(c.Request.Context(), &item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) listLowStockItems(c *gin.Context) {
	items, err := h.inventoryService.ListLowStock(c.Request.Context(), orgID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// recordStockMovement accepts the movement and queues it; the quantity
// change lands asynchronously, so the response is 202.
func (h *Handler) recordStockMovement(c *gin.Context) {
	var movement domain.StockMovement
	if err := c.ShouldBindJSON(&movement); err != nil {
		h.invalidPayload(c, err)
		return
	}
	movement.OrganizationID = orgID(c)
	movement.ActorID = actorID(c)

	if err := h.inventoryService.RecordMovement(c.Request.Context(), &movement); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, movement)
}

func (h *Handler) listStockMovements(c *gin.Context) {
	size, offset := pagination(c)
	movements, err := h.inventoryService.FindMovements(c.Request.Context(), &domain.ListStockMovementsFilter{
		OrganizationID: orgID(c),
		ItemID:         c.Query("item_id"),
		Statuses:       c.QueryArray("status"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}
