package websocket

import (
	"log"
	"sync"

	"codearena/models"

	"github.com/gorilla/websocket"
)

// GamificationClient is one live connection subscribed to a user's events.
type GamificationClient struct {
	Conn    *websocket.Conn
	UserID  string
	writeMu sync.Mutex
}

// SafeWriteJSON serializes writes; gorilla connections allow one writer.
func (gc *GamificationClient) SafeWriteJSON(v interface{}) error {
	gc.writeMu.Lock()
	defer gc.writeMu.Unlock()
	return gc.Conn.WriteJSON(v)
}

// GamificationHub fans badge and level events out to the connections of the
// user they concern.
type GamificationHub struct {
	mu      sync.RWMutex
	clients map[*GamificationClient]bool
}

func NewGamificationHub() *GamificationHub {
	return &GamificationHub{clients: make(map[*GamificationClient]bool)}
}

// Register adds client to the hub.
func (h *GamificationHub) Register(client *GamificationClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	log.Printf("Gamification client registered. Total clients: %d", len(h.clients))
}

// Unregister removes client and closes its connection. Repeated calls are
// no-ops.
func (h *GamificationHub) Unregister(client *GamificationClient) {
	h.mu.Lock()
	if !h.clients[client] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	client.Conn.Close()
	log.Printf("Gamification client unregistered. Total clients: %d", total)
}

// Publish sends event to every connection of event.UserID. Clients whose
// write fails are dropped.
func (h *GamificationHub) Publish(event models.GamificationEvent) {
	h.mu.RLock()
	var targets []*GamificationClient
	for client := range h.clients {
		if client.UserID == event.UserID {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.SafeWriteJSON(event); err != nil {
			log.Printf("Error sending gamification event to client: %v", err)
			h.Unregister(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *GamificationHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
