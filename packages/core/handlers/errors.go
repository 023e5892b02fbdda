package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"kicker-api/packages/core/models"
	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP statuses. Store
// failures are attached to the context for the request logger and answered
// with a generic message.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	var ce *services.ConflictError
	var ne *services.NotFoundError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{"error": ce.Message})
	case errors.As(err, &ne):
		c.JSON(http.StatusNotFound, gin.H{"error": ne.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseID(c *gin.Context, name, message string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return 0, false
	}
	return uint(id), true
}

// parseLimit reads the limit query parameter, capped at 100.
func parseLimit(c *gin.Context, def string) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", def))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return 0, false
	}
	if limit > 100 {
		limit = 100
	}
	return limit, true
}

func parsePage(c *gin.Context, sizeParam string) (page int, pageSize int, ok bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return 0, 0, false
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery(sizeParam, "10"))
	if err != nil || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + sizeParam + " parameter"})
		return 0, 0, false
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize, true
}

func parseMode(c *gin.Context) (models.MatchMode, bool) {
	mode := models.MatchMode(c.DefaultQuery("mode", string(models.ModeOneOnOne)))
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mode. Must be one of: 1on1, 2on2"})
		return "", false
	}
	return mode, true
}

// bindOptionalJSON binds a JSON body that may be absent. Only an empty body
// counts as absent; the declared length is not trusted, since chunked and
// HTTP/2 requests report -1.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error()})
		return false
	}
	return true
}
