package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) listAuditLogs(c *gin.Context) {
	size, offset := pagination(c)
	logs, err := h.auditLogRepository.List(c.Request.Context(), &domain.ListAuditLogsFilter{
		OrganizationID: orgID(c),
		Actions:        c.QueryArray("action"),
		ActorID:        c.Query("actor_id"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}
