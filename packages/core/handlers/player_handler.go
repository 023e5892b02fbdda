package handlers

import (
	"net/http"

	"kicker-api/packages/core/models"
	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	playerService *services.PlayerService
}

func NewPlayerHandler(playerService *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
	}
}

// CreatePlayer adds a player to a kicker
// @Summary Create a player
// @Description Create a player with default ratings. Whether they join the running season depends on the mid-season join policy.
// @Tags players
// @Accept json
// @Produce json
// @Param id path int true "Kicker ID"
// @Param player body models.CreatePlayerRequest true "Player data"
// @Success 201 {object} models.Player
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/players [post]
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	var req models.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error()})
		return
	}

	player, err := h.playerService.CreatePlayer(c.Request.Context(), kickerID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, player)
}

// GetPlayer retrieves a player by ID
// @Summary Get player by ID
// @Description Get player information by player ID
// @Tags players
// @Produce json
// @Param id path int true "Player ID"
// @Success 200 {object} models.Player
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players/{id} [get]
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid player ID")
	if !ok {
		return
	}

	player, err := h.playerService.GetPlayerByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, player)
}

// GetMmrHistory retrieves MMR history for a player
// @Summary Get player MMR history
// @Description Get every rating change of a player, oldest first
// @Tags players
// @Produce json
// @Param id path int true "Player ID"
// @Success 200 {array} models.MmrHistory
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players/{id}/mmr-history [get]
func (h *PlayerHandler) GetMmrHistory(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid player ID")
	if !ok {
		return
	}

	if _, err := h.playerService.GetPlayerByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	history, err := h.playerService.GetMmrHistoryByPlayerID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// GetLeaderboard retrieves a kicker's top players
// @Summary Get leaderboard
// @Description Get the top N players of a kicker ordered by rating for the given mode
// @Tags players
// @Produce json
// @Param id path int true "Kicker ID"
// @Param mode query string false "Rating mode" Enums(1on1,2on2)
// @Param limit query int false "Number of players to retrieve (default: 10, max: 100)"
// @Success 200 {array} models.Player
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/leaderboard [get]
func (h *PlayerHandler) GetLeaderboard(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}
	mode, ok := parseMode(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c, "10")
	if !ok {
		return
	}

	players, err := h.playerService.GetLeaderboard(c.Request.Context(), kickerID, mode, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, players)
}

// GetPlayerMatches retrieves matches for a specific player with pagination
// @Summary Get matches for a player
// @Description Get matches for a specific player, ordered from newest to oldest, with optional filtering and pagination
// @Tags players
// @Produce json
// @Param id path int true "Player ID"
// @Param wins query string false "Filter for wins only (set to '1')"
// @Param losses query string false "Filter for losses only (set to '1')"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Number of matches per page (default: 10, max: 100)"
// @Success 200 {object} models.PaginatedMatchResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players/{id}/matches [get]
func (h *PlayerHandler) GetPlayerMatches(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid player ID")
	if !ok {
		return
	}

	if _, err := h.playerService.GetPlayerByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	var filter string
	wins := c.Query("wins")
	losses := c.Query("losses")

	if wins == "1" && losses == "1" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cannot filter for both wins and losses at the same time",
		})
		return
	} else if wins == "1" {
		filter = "wins"
	} else if losses == "1" {
		filter = "losses"
	}

	page, pageSize, ok := parsePage(c, "pageSize")
	if !ok {
		return
	}

	paginatedResponse, err := h.playerService.GetPlayerMatches(c.Request.Context(), id, filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse)
}

// GetPlayers retrieves a kicker's players with pagination and sorting
// @Summary Get players of a kicker
// @Description Get players with pagination and sorting options
// @Tags players
// @Produce json
// @Param id path int true "Kicker ID"
// @Param orderBy query string false "Sort field: 'created_at', 'mmr', 'mmr2on2', 'name', 'wins' (default: 'created_at')"
// @Param direction query string false "Sort direction: 'ASC' or 'DESC' (default: 'DESC')"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Number of players per page (default: 10, max: 100)"
// @Success 200 {object} models.PaginatedPlayersResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/players [get]
func (h *PlayerHandler) GetPlayers(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	orderBy := c.DefaultQuery("orderBy", "created_at")
	direction := c.DefaultQuery("direction", "DESC")

	page, pageSize, ok := parsePage(c, "pageSize")
	if !ok {
		return
	}

	paginatedResponse, err := h.playerService.GetAllPlayers(c.Request.Context(), kickerID, orderBy, direction, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse)
}
