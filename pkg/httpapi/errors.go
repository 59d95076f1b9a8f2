package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/auth"
	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
	"github.com/bookclub/roster-admin/pkg/core/services"
	"github.com/bookclub/roster-admin/pkg/db"
	"github.com/bookclub/roster-admin/pkg/spreadsheet"
)

// writeError maps a service error onto a status and {"error": ...} body
func (h *Handler) writeError(c *gin.Context, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func classify(err error) (int, string) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, query.ErrInvalidSort),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, spreadsheet.ErrUnreadable):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrUnregistered):
		return http.StatusForbidden, services.ErrUnregistered.Error()
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "not signed in"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}
