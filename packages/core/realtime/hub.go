package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"kicker-api/packages/core/services"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

// Hub fans match events out to the websocket clients watching a kicker.
// It implements services.Notifier; Publish never blocks the caller.
type Hub struct {
	kickers map[uint]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan services.MatchEvent
	done       chan struct{}

	logger *zap.Logger
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	kickerID uint
	send     chan []byte
}

// Message is the frame sent to subscribers.
type Message struct {
	Type    services.MatchEventType `json:"type"`
	MatchID uint                    `json:"match_id"`
	Data    services.MatchEvent     `json:"data"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		kickers:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan services.MatchEvent, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run dispatches registrations and events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.kickers[client.kickerID] == nil {
				h.kickers[client.kickerID] = make(map[*Client]struct{})
			}
			h.kickers[client.kickerID][client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("live client registered", zap.Uint("kicker_id", client.kickerID))

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.logger.Debug("live client unregistered", zap.Uint("kicker_id", client.kickerID))

		case event := <-h.broadcast:
			data, err := json.Marshal(Message{Type: event.Type, MatchID: event.MatchID, Data: event})
			if err != nil {
				h.logger.Error("failed to marshal match event", zap.Error(err))
				continue
			}
			h.mu.Lock()
			for client := range h.kickers[event.KickerID] {
				select {
				case client.send <- data:
				default:
					// Slow consumer; drop it rather than stall everyone else.
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.kickers[client.kickerID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.kickers, client.kickerID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.kickers {
		for client := range clients {
			h.remove(client)
		}
	}
}

// Publish queues an event for delivery. When the queue is full the event is
// dropped: live updates are best effort and must never hold up a match.
func (h *Hub) Publish(event services.MatchEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("live event dropped", zap.Uint("kicker_id", event.KickerID), zap.String("type", string(event.Type)))
	}
}

// Subscribers returns the number of clients watching a kicker.
func (h *Hub) Subscribers(kickerID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.kickers[kickerID])
}

// Attach registers conn as a subscriber of kickerID and starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn, kickerID uint) {
	client := &Client{
		hub:      h,
		conn:     conn,
		kickerID: kickerID,
		send:     make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only exists to process control frames and notice disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
