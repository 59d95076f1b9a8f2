package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/services"
)

func (h *Handler) listMeetings(c *gin.Context) {
	options, err := services.ListMeetingOptions(c.Request.Context(), h.store)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (h *Handler) createMeeting(c *gin.Context) {
	var in model.MeetingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	m, err := services.CreateMeeting(c.Request.Context(), h.store, h.logger, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) updateMeeting(c *gin.Context) {
	var upd model.MeetingUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	m, err := services.UpdateMeeting(c.Request.Context(), h.store, h.logger, c.Param("id"), upd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) deleteMeeting(c *gin.Context) {
	if err := services.DeleteMeeting(c.Request.Context(), h.store, h.logger, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
