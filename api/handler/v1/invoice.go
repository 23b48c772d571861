package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) createInvoice(c *gin.Context) {
	var inv domain.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		h.invalidPayload(c, err)
		return
	}
	inv.OrganizationID = orgID(c)

	if err := h.invoiceService.Create(c.Request.Context(), &inv); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) listInvoices(c *gin.Context) {
	size, offset := pagination(c)
	invoices, err := h.invoiceService.Find(c.Request.Context(), &domain.ListInvoicesFilter{
		OrganizationID: orgID(c),
		Statuses:       c.QueryArray("status"),
		Q:              c.Query("q"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *Handler) getInvoice(c *gin.Context) {
	inv, err := h.invoiceService.GetByID(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) updateInvoice(c *gin.Context) {
	var inv domain.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		h.invalidPayload(c, err)
		return
	}
	inv.ID = c.Param("id")
	inv.OrganizationID = orgID(c)

	if err := h.invoiceService.Update(c.Request.Context(), &inv); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) issueInvoice(c *gin.Context) {
	inv, err := h.invoiceService.Issue(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) payInvoice(c *gin.Context) {
	inv, err := h.invoiceService.MarkPaid(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) voidInvoice(c *gin.Context) {
	inv, err := h.invoiceService.Void(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// submitInvoiceToZRA re-submits an issued invoice whose background
// submission failed.
func (h *Handler) submitInvoiceToZRA(c *gin.Context) {
	if err := h.invoiceService.SubmitToZRA(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	inv, err := h.invoiceService.GetByID(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

type classifyItemRequest struct {
	Description string `json:"description"`
}

func (h *Handler) classifyInvoiceItem(c *gin.Context) {
	var body classifyItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidPayload(c, err)
		return
	}

	vatClass := h.invoiceService.ClassifyItem(c.Request.Context(), body.Description)
	c.JSON(http.StatusOK, gin.H{"vat_class": vatClass})
}
