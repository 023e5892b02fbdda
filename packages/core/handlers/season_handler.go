package handlers

import (
	"net/http"

	"kicker-api/packages/core/models"
	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type SeasonHandler struct {
	seasonService *services.SeasonService
}

func NewSeasonHandler(seasonService *services.SeasonService) *SeasonHandler {
	return &SeasonHandler{
		seasonService: seasonService,
	}
}

// StartSeason opens a new season
// @Summary Start a season
// @Description Start the next season of a kicker. Every current player is seeded at the default rating.
// @Tags seasons
// @Accept json
// @Produce json
// @Param id path int true "Kicker ID"
// @Param season body models.StartSeasonRequest false "Season name"
// @Success 201 {object} models.Season
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/seasons [post]
func (h *SeasonHandler) StartSeason(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	var req models.StartSeasonRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	season, err := h.seasonService.StartSeason(c.Request.Context(), kickerID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, season)
}

// EndSeason closes the active season
// @Summary End the active season
// @Tags seasons
// @Produce json
// @Param id path int true "Kicker ID"
// @Success 200 {object} models.Season
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/seasons/end [post]
func (h *SeasonHandler) EndSeason(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	season, err := h.seasonService.EndSeason(c.Request.Context(), kickerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, season)
}

// GetActiveSeason retrieves the running season
// @Summary Get active season
// @Tags seasons
// @Produce json
// @Param id path int true "Kicker ID"
// @Success 200 {object} models.Season
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/seasons/active [get]
func (h *SeasonHandler) GetActiveSeason(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	season, err := h.seasonService.GetActiveSeason(c.Request.Context(), kickerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, season)
}

// GetSeasons lists a kicker's seasons
// @Summary List seasons
// @Tags seasons
// @Produce json
// @Param id path int true "Kicker ID"
// @Success 200 {array} models.Season
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/seasons [get]
func (h *SeasonHandler) GetSeasons(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	seasons, err := h.seasonService.GetSeasons(c.Request.Context(), kickerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, seasons)
}

// GetSeasonRankings retrieves the rankings of a season
// @Summary Get season rankings
// @Tags seasons
// @Produce json
// @Param id path int true "Season ID"
// @Param mode query string false "Rating mode" Enums(1on1,2on2)
// @Success 200 {array} models.SeasonRanking
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /seasons/{id}/rankings [get]
func (h *SeasonHandler) GetSeasonRankings(c *gin.Context) {
	seasonID, ok := parseID(c, "id", "Invalid season ID")
	if !ok {
		return
	}
	mode, ok := parseMode(c)
	if !ok {
		return
	}

	rankings, err := h.seasonService.GetSeasonRankings(c.Request.Context(), seasonID, mode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rankings)
}
