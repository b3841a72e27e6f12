package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/telvora/telvora/internal/events"
)

// Hub broadcasts inference events to connected dashboard clients.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]time.Time
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	feed       <-chan events.Envelope
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard is served from a separate origin.
		return true
	},
}

// NewHub creates the hub and starts pumping the event feed to clients.
func NewHub(feed <-chan events.Envelope) *Hub {
	hub := &Hub{
		clients:    make(map[*websocket.Conn]time.Time),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		feed:       feed,
	}

	go hub.run()
	go hub.consumeFeed()

	return hub
}

// HandleConnection upgrades an HTTP request to a WebSocket and
// registers the client for the live feed.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return
	}

	// The hello goes out before registration: once the conn is in the
	// client set run() may broadcast to it, and the conn supports only
	// one concurrent writer.
	conn.WriteJSON(map[string]any{
		"type":      "connection_established",
		"timestamp": time.Now().Unix(),
	})

	h.register <- conn

	go h.drainClient(conn)
}

// drainClient reads (and discards) client frames so pings and close
// frames are processed; a read error unregisters the client.
func (h *Hub) drainClient(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister <- conn
			return
		}
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = time.Now()
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client connected. Total: %d", total)

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			total := len(h.clients)
			h.mu.Unlock()
			client.Close()
			log.Printf("WebSocket client disconnected. Total: %d", total)

		case message := <-h.broadcast:
			h.mu.RLock()
			stale := make([]*websocket.Conn, 0)
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					stale = append(stale, client)
				}
			}
			h.mu.RUnlock()

			// Stale clients are dropped right here: a send to the
			// unregister channel would block this same loop.
			if len(stale) > 0 {
				h.mu.Lock()
				for _, client := range stale {
					delete(h.clients, client)
					client.Close()
				}
				total := len(h.clients)
				h.mu.Unlock()
				log.Printf("Dropped %d stale WebSocket clients. Total: %d", len(stale), total)
			}
		}
	}
}

// consumeFeed forwards bus envelopes to the broadcast channel until
// the feed closes.
func (h *Hub) consumeFeed() {
	for envelope := range h.feed {
		payload, err := json.Marshal(envelope)
		if err != nil {
			log.Printf("Failed to marshal feed event: %v", err)
			continue
		}
		select {
		case h.broadcast <- payload:
		default:
			log.Printf("WebSocket broadcast backlog full, dropping %s event", envelope.Type)
		}
	}
}
