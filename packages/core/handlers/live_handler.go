package handlers

import (
	"net/http"

	"kicker-api/packages/core/realtime"
	"kicker-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type LiveHandler struct {
	hub           *realtime.Hub
	kickerService *services.KickerService
	upgrader      websocket.Upgrader
}

// NewLiveHandler builds the websocket endpoint. checkOrigin may be nil to
// accept any origin.
func NewLiveHandler(hub *realtime.Hub, kickerService *services.KickerService, checkOrigin func(*http.Request) bool) *LiveHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &LiveHandler{
		hub:           hub,
		kickerService: kickerService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Subscribe upgrades to a websocket streaming the kicker's match events
// @Summary Live match feed
// @Description Websocket stream of match_created, goal_scored, goal_undone, match_ended and match_cancelled events
// @Tags live
// @Param id path int true "Kicker ID"
// @Success 101
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /kickers/{id}/live [get]
func (h *LiveHandler) Subscribe(c *gin.Context) {
	kickerID, ok := parseID(c, "id", "Invalid kicker ID")
	if !ok {
		return
	}

	if _, err := h.kickerService.GetKickerByID(c.Request.Context(), kickerID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		c.Error(err)
		return
	}

	h.hub.Attach(conn, kickerID)
}
