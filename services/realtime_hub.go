package services

import (
	"encoding/json"
	"sync"

	"github.com/breadMSA/Calories/models"

	"github.com/gorilla/websocket"
)

// WSClient is one connected dashboard.
type WSClient struct {
	Conn *websocket.Conn
}

// RealtimeHub pushes day-record updates to every open dashboard so an edit
// in one session shows up in the others without a reload. Single-user
// system: there is one broadcast group.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// BroadcastRecord notifies all clients that a date's record changed.
func (h *RealtimeHub) BroadcastRecord(record models.DayRecord) {
	msg, _ := json.Marshal(map[string]any{
		"kind":   "record.updated",
		"record": record,
	})
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
