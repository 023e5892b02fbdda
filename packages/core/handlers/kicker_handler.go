package handlers

import (
	"net/http"

	"kicker-api/packages/core/models"
	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type KickerHandler struct {
	kickerService *services.KickerService
}

func NewKickerHandler(kickerService *services.KickerService) *KickerHandler {
	return &KickerHandler{
		kickerService: kickerService,
	}
}

// CreateKicker creates a new kicker
// @Summary Create a kicker
// @Description Create a new kicker (a table and the group of players using it)
// @Tags kickers
// @Accept json
// @Produce json
// @Param kicker body models.CreateKickerRequest true "Kicker data"
// @Success 201 {object} models.Kicker
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers [post]
func (h *KickerHandler) CreateKicker(c *gin.Context) {
	var req models.CreateKickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error()})
		return
	}

	kicker, err := h.kickerService.CreateKicker(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, kicker)
}

// GetKickers lists all kickers
// @Summary List kickers
// @Tags kickers
// @Produce json
// @Success 200 {array} models.Kicker
// @Failure 500 {object} map[string]string
// @Router /kickers [get]
func (h *KickerHandler) GetKickers(c *gin.Context) {
	kickers, err := h.kickerService.GetKickers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, kickers)
}

// GetKicker retrieves a kicker by ID
// @Summary Get kicker by ID
// @Tags kickers
// @Produce json
// @Param id path int true "Kicker ID"
// @Success 200 {object} models.Kicker
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /kickers/{id} [get]
func (h *KickerHandler) GetKicker(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	kicker, err := h.kickerService.GetKickerByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, kicker)
}
