package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookclub/roster-admin/pkg/auth"
	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/services"
)

func (h *Handler) listLeaders(c *gin.Context) {
	leaders, err := services.ListLeaders(c.Request.Context(), h.store)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, leaders)
}

func (h *Handler) createLeader(c *gin.Context) {
	var in model.LeaderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	leader, err := services.CreateLeader(c.Request.Context(), h.store, h.logger, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, leader)
}

func (h *Handler) updateLeader(c *gin.Context) {
	var upd model.LeaderUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	leader, err := services.UpdateLeader(c.Request.Context(), h.store, h.logger, c.Param("id"), upd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, leader)
}

func (h *Handler) deleteLeader(c *gin.Context) {
	if err := services.DeleteLeader(c.Request.Context(), h.store, h.logger, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// currentLeader returns the signed-in leader's own profile
func (h *Handler) currentLeader(c *gin.Context) {
	sess, _ := auth.SessionFrom(c)

	leader, err := services.GetLeaderByEmail(c.Request.Context(), h.store, sess.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, leader)
}
