package services

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the subset of a websocket connection the hub needs. Satisfied by
// *websocket.Conn.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub tracks live websocket connections per user and fans notifications
// out to them. It is the only shared mutable state outside the store.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[string]Conn // user id -> connection id -> conn
	log   *zap.Logger
}

// NewHub creates an empty hub
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[string]map[string]Conn),
		log:   log,
	}
}

// Connect registers a connection for the user and returns its id
func (h *Hub) Connect(userID string, conn Conn) string {
	connID := uuid.New().String()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[string]Conn)
	}
	h.conns[userID][connID] = conn

	h.log.Debug("websocket connected", zap.String("user", userID), zap.String("conn", connID))
	return connID
}

// Disconnect removes and closes the connection
func (h *Hub) Disconnect(userID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.conns[userID]
	if !ok {
		return
	}
	if conn, ok := conns[connID]; ok {
		conn.Close()
		delete(conns, connID)
	}
	if len(conns) == 0 {
		delete(h.conns, userID)
	}
}

// SendToUser writes the payload to every live connection of the user.
// Connections that fail to write are dropped.
func (h *Hub) SendToUser(userID string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.conns[userID]
	if !ok {
		return
	}

	for connID, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.log.Debug("websocket write failed, dropping connection",
				zap.String("user", userID), zap.String("conn", connID), zap.Error(err))
			conn.Close()
			delete(conns, connID)
		}
	}
	if len(conns) == 0 {
		delete(h.conns, userID)
	}
}

// ConnectionCount returns the number of live connections for the user
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
