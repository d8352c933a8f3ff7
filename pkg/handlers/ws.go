package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"optysys-backend/pkg/middleware"
	"optysys-backend/pkg/services"
	"optysys-backend/pkg/utils"
)

// WSHandler upgrades authenticated requests to websocket connections and
// registers them in the hub for notification fan-out.
type WSHandler struct {
	hub      *services.Hub
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates the websocket handler
func NewWSHandler(hub *services.Hub, log *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GET /ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := h.hub.Connect(userID, conn)
	defer h.hub.Disconnect(userID, connID)

	// Reads keep the connection alive until the client goes away; inbound
	// messages carry no meaning on this channel.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
