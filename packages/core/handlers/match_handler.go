package handlers

import (
	"net/http"
	"strconv"
	"time"

	"kicker-api/packages/core/models"
	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	matchService *services.MatchService
}

func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// GoalResponse is returned by goal mutations. Goal is null when an undo
// found nothing to remove.
type GoalResponse struct {
	Match *models.Match `json:"match"`
	Goal  *models.Goal  `json:"goal"`
}

// GetRecentMatches retrieves the N most recent matches of a kicker
// @Summary Get recent matches
// @Description Get the N most recent matches ordered by start date (newest first)
// @Tags matches
// @Produce json
// @Param id path int true "Kicker ID"
// @Param limit query int false "Number of matches to retrieve (default: 10, max: 100)"
// @Success 200 {array} models.Match
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/matches/recent [get]
func (h *MatchHandler) GetRecentMatches(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}
	limit, ok := parseLimit(c, "10")
	if !ok {
		return
	}

	matches, err := h.matchService.GetRecentMatches(c.Request.Context(), kickerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, matches)
}

// GetMatches retrieves matches with pagination and filters
// @Summary Get matches with pagination and filters
// @Description Get a kicker's matches with optional filters for player, season, status, and date range
// @Tags matches
// @Produce json
// @Param id path int true "Kicker ID"
// @Param page query int false "Page number (default: 1)" default(1)
// @Param per_page query int false "Items per page (default: 10, max: 100)" default(10)
// @Param player_id query int false "Filter by player ID (any slot)"
// @Param season_id query int false "Filter by season ID"
// @Param status query string false "Filter by match status" Enums(active,ended)
// @Param date_from query string false "Filter from date (YYYY-MM-DD format)"
// @Param date_to query string false "Filter to date (YYYY-MM-DD format)"
// @Success 200 {object} models.PaginatedMatchResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/matches [get]
func (h *MatchHandler) GetMatches(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	page, perPage, ok := parsePage(c, "per_page")
	if !ok {
		return
	}

	filters := services.MatchFilters{
		KickerID: kickerID,
		Page:     page,
		PerPage:  perPage,
	}

	if playerIDStr := c.Query("player_id"); playerIDStr != "" {
		playerID, err := strconv.ParseUint(playerIDStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player_id parameter"})
			return
		}
		id := uint(playerID)
		filters.PlayerID = &id
	}

	if seasonIDStr := c.Query("season_id"); seasonIDStr != "" {
		seasonID, err := strconv.ParseUint(seasonIDStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid season_id parameter"})
			return
		}
		id := uint(seasonID)
		filters.SeasonID = &id
	}

	if status := c.Query("status"); status != "" {
		s := models.MatchStatus(status)
		if s != models.MatchStatusActive && s != models.MatchStatusEnded {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status. Must be one of: active, ended"})
			return
		}
		filters.Status = &s
	}

	if dateFromStr := c.Query("date_from"); dateFromStr != "" {
		dateFrom, err := time.Parse("2006-01-02", dateFromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date_from format. Use YYYY-MM-DD"})
			return
		}
		filters.DateFrom = &dateFrom
	}

	if dateToStr := c.Query("date_to"); dateToStr != "" {
		dateTo, err := time.Parse("2006-01-02", dateToStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date_to format. Use YYYY-MM-DD"})
			return
		}
		filters.DateTo = &dateTo
	}

	result, err := h.matchService.GetMatches(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateMatch starts a match on a kicker
// @Summary Start a match
// @Description Start a 1-on-1 (player1 vs player2) or 2-on-2 (player1+player3 vs player2+player4) match. A kicker has at most one active match.
// @Tags matches
// @Accept json
// @Produce json
// @Param id path int true "Kicker ID"
// @Param match body models.CreateMatchRequest true "Lineup"
// @Success 201 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/matches [post]
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	var req models.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error()})
		return
	}

	match, err := h.matchService.CreateMatch(c.Request.Context(), kickerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, match)
}

// GetActiveMatch retrieves the match in progress on a kicker
// @Summary Get active match
// @Tags matches
// @Produce json
// @Param id path int true "Kicker ID"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id}/matches/active [get]
func (h *MatchHandler) GetActiveMatch(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	match, err := h.matchService.GetActiveMatch(c.Request.Context(), kickerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

// GetMatch retrieves a match by ID
// @Summary Get match by ID
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /matches/{id} [get]
func (h *MatchHandler) GetMatch(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid match ID")
	if !ok {
		return
	}

	match, err := h.matchService.GetMatch(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

// GetGoals retrieves the goal log of a match
// @Summary Get goal log
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {array} models.Goal
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /matches/{id}/goals [get]
func (h *MatchHandler) GetGoals(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid match ID")
	if !ok {
		return
	}

	goals, err := h.matchService.GetGoals(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goals)
}

// ScoreGoal records a goal
// @Summary Score a goal
// @Description Record a goal by a player. With own_goal the goal counts for the opposing team.
// @Tags matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param goal body models.ScoreGoalRequest true "Scorer"
// @Success 201 {object} GoalResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /matches/{id}/goals [post]
func (h *MatchHandler) ScoreGoal(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid match ID")
	if !ok {
		return
	}

	var req models.ScoreGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error()})
		return
	}

	var (
		match *models.Match
		goal  *models.Goal
		err   error
	)
	if req.OwnGoal {
		match, goal, err = h.matchService.ScoreOwnGoal(c.Request.Context(), id, req.PlayerID)
	} else {
		match, goal, err = h.matchService.ScoreGoal(c.Request.Context(), id, req.PlayerID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, GoalResponse{Match: match, Goal: goal})
}

// UndoLastGoal removes the most recent goal
// @Summary Undo last goal
// @Description Remove the most recent goal and recompute the score. A match without goals is returned unchanged.
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} GoalResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /matches/{id}/goals/last [delete]
func (h *MatchHandler) UndoLastGoal(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid match ID")
	if !ok {
		return
	}

	match, goal, err := h.matchService.UndoLastGoal(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, GoalResponse{Match: match, Goal: goal})
}

// EndMatch ends a match and applies the rating outcome
// @Summary End a match
// @Description End an active match with the score from its goal log, or with an explicit final score. Draws are not allowed.
// @Tags matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param score body models.EndMatchRequest false "Optional final score"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /matches/{id}/end [post]
func (h *MatchHandler) EndMatch(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid match ID")
	if !ok {
		return
	}

	var req models.EndMatchRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	match, err := h.matchService.EndMatch(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

// CancelMatch discards an active match
// @Summary Cancel a match
// @Description Discard an active match and its goals without any rating change. Ended matches cannot be cancelled.
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /matches/{id} [delete]
func (h *MatchHandler) CancelMatch(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid match ID")
	if !ok {
		return
	}

	if _, err := h.matchService.CancelMatch(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Match cancelled successfully"})
}
