package handlers

import (
	"net/http"

	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats retrieves statistics of a kicker
// @Summary Get kicker statistics
// @Description Get player, match and goal counts and the match trend over the last two weeks
// @Tags stats
// @Produce json
// @Param id path int true "Kicker ID"
// @Success 200 {object} models.Stats
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	stats, err := h.statsService.GetStats(c.Request.Context(), kickerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
