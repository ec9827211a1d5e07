package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
)

// Websocket timing constants.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the platform frontend on another
	// origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler upgrades clients onto an event's broadcast stream.
type LiveHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps Dependencies) *LiveHandler {
	return &LiveHandler{
		deps: deps,
		log:  logger.Get().Named("live"),
	}
}

// HandleLive handles GET /events/{id}/live. Each connection gets its
// own client id and channel; disconnecting unsubscribes it.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	clientID := uuid.NewString()
	ctx := r.Context()
	ch := h.deps.Subscribe(ctx, eventID, clientID)
	defer h.deps.Unsubscribe(ctx, eventID, clientID)
	defer conn.Close()

	// Reader: nothing inbound is expected, but the read loop notices
	// closes and keeps the pong handler serviced.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
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
		case msg, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug(ctx, "client write failed",
					logger.String("clientID", clientID),
					logger.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}
