package handlers

import (
	"net/http"

	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type MmrHistoryHandler struct {
	mmrHistoryService *services.MmrHistoryService
}

func NewMmrHistoryHandler(mmrHistoryService *services.MmrHistoryService) *MmrHistoryHandler {
	return &MmrHistoryHandler{
		mmrHistoryService: mmrHistoryService,
	}
}

// GetRecentMmrChanges retrieves recent MMR changes on a kicker
// @Summary Get recent MMR changes
// @Description Get recent MMR changes for all players of a kicker ordered by date (newest first)
// @Tags mmr-history
// @Produce json
// @Param id path int true "Kicker ID"
// @Param limit query int false "Number of MMR changes to retrieve (default: 10, max: 100)"
// @Success 200 {array} models.MmrHistory
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/mmr-history/recent [get]
func (h *MmrHistoryHandler) GetRecentMmrChanges(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}
	limit, ok := parseLimit(c, "10")
	if !ok {
		return
	}

	changes, err := h.mmrHistoryService.GetRecentChanges(c.Request.Context(), kickerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, changes)
}
