package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chimbuka/mabuku/domain"
)

func (h *Handler) createUser(c *gin.Context) {
	var u domain.User
	if err := c.ShouldBindJSON(&u); err != nil {
		h.invalidPayload(c, err)
		return
	}
	u.OrganizationID = orgID(c)

	if err := h.userService.Create(c.Request.Context(), &u); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) listUsers(c *gin.Context) {
	size, offset := pagination(c)
	users, err := h.userService.Find(c.Request.Context(), &domain.ListUsersFilter{
		OrganizationID: orgID(c),
		Roles:          c.QueryArray("role"),
		ActiveOnly:     c.Query("active_only") == "true",
		Q:              c.Query("q"),
		Size:           size,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) getUser(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) updateUser(c *gin.Context) {
	var u domain.User
	if err := c.ShouldBindJSON(&u); err != nil {
		h.invalidPayload(c, err)
		return
	}
	u.ID = c.Param("id")
	u.OrganizationID = orgID(c)

	if err := h.userService.Update(c.Request.Context(), &u); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) deactivateUser(c *gin.Context) {
	if err := h.userService.Deactivate(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
