package httpapi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
	"github.com/bookclub/roster-admin/pkg/core/services"
	"github.com/bookclub/roster-admin/pkg/spreadsheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// searchRequest is the query string of a participant search
type searchRequest struct {
	query.Filters
	query.Pagination
	query.Sort
}

func (h *Handler) bindSearch(c *gin.Context) (searchRequest, bool) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, fmt.Sprintf("invalid search parameters: %v", err))
		return req, false
	}
	if req.Limit == 0 && h.cfg.DefaultPageSize > 0 {
		req.Limit = h.cfg.DefaultPageSize
	}
	return req, true
}

func (h *Handler) searchParticipants(c *gin.Context) {
	req, ok := h.bindSearch(c)
	if !ok {
		return
	}

	page, err := services.SearchParticipants(c.Request.Context(), h.store, h.logger, viewerFrom(c), req.Filters, req.Pagination, req.Sort)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) exportParticipants(c *gin.Context) {
	req, ok := h.bindSearch(c)
	if !ok {
		return
	}
	scope := services.ExportScope(c.DefaultQuery("scope", string(services.ExportPage)))

	export, err := services.ExportParticipants(c.Request.Context(), h.store, h.logger, viewerFrom(c),
		scope, req.Filters, req.Pagination, req.Sort, h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		export.Filename, url.PathEscape(export.Filename)))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := spreadsheet.Write(c.Writer, export.Table); err != nil {
		h.logger.Error("Failed to write export", zap.String("filename", export.Filename), zap.Error(err))
	}
}

func (h *Handler) importParticipants(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	dryRun := c.PostForm("dry_run") == "true"

	f, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "file could not be opened")
		return
	}
	defer f.Close()

	result, err := services.ImportRosterFile(c.Request.Context(), h.store, h.logger, f, fileHeader.Filename, dryRun)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if !dryRun {
		h.metrics.ObserveImport(result.Imported, len(result.Failures))
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) createParticipant(c *gin.Context) {
	var in model.ParticipantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	p, err := services.CreateParticipant(c.Request.Context(), h.store, h.logger, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) getParticipant(c *gin.Context) {
	p, err := services.GetParticipant(c.Request.Context(), h.store, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updateParticipant(c *gin.Context) {
	var upd model.ParticipantUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	p, err := services.UpdateParticipant(c.Request.Context(), h.store, h.logger, c.Param("id"), upd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteParticipant(c *gin.Context) {
	if err := services.DeleteParticipant(c.Request.Context(), h.store, h.logger, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
