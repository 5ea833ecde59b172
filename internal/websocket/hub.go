package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"katalog-mediow/internal/models"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AssetEvent announces a change in the catalog to connected clients.
type AssetEvent struct {
	Type string      `json:"type"`
	Kind models.Kind `json:"kind"`
	IDs  []int64     `json:"ids"`
}

const (
	EventAssetCreated  = "asset_created"
	EventAssetUpdated  = "asset_updated"
	EventAssetsDeleted = "assets_deleted"
)

// Hub fans catalog events out to every connected client, so galleries can
// refresh without polling.
type Hub struct {
	clients    map[*Client]bool
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	log.Printf("Client for user %d registered", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		log.Printf("Client for user %d unregistered", client.UserID)
	}
}

// BroadcastEvent never blocks the publishing request; a client with a full
// send buffer just misses the message.
func (h *Hub) BroadcastEvent(event AssetEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: failed to marshal asset event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("WARN: Client for user %d send buffer is full. Dropping message.", client.UserID)
		}
	}
}
