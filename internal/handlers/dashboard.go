package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"eventflow/internal/services"
)

// DashboardHandler streams the change feed to staff dashboards over a
// websocket, so new check-ins show up without polling.
type DashboardHandler struct {
	feed     *services.DashboardFeed
	upgrader websocket.Upgrader
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(feed *services.DashboardFeed) *DashboardHandler {
	return &DashboardHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Session auth happened in middleware; the websocket itself
			// does not re-check origins beyond the default.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Stream godoc
// @Summary      Live check-in feed
// @Description  Upgrades to a websocket and streams change events as JSON.
// @Tags         admin
// @Router       /admin/feed [get]
func (h *DashboardHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade dashboard connection: %v", err)
		return
	}
	defer conn.Close()

	events := h.feed.Subscribe()
	defer h.feed.Unsubscribe(events)

	// Drain reads so close frames and pongs are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
