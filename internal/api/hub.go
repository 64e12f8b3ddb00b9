package api

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub maintains the set of active websocket clients and broadcasts the
// touched-scripthash payload published after every successful
// reconciliation cycle. Adapted directly from the teacher's
// internal/api/websocket.go; the only addition is the synced latch that
// backs GET /healthz (§9: the synchronized signal is edge-triggered, so
// a durable "has synced at least once" flag has to be latched
// separately).
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex

	syncedOnce sync.Once
	synced     atomic.Bool
}

// NewHub returns a Hub ready to Run.
func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan []byte, 256),
		clients:   make(map[*websocket.Conn]bool),
	}
}

// Run drains the broadcast channel, fanning each message out to every
// connected client.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Hub] websocket write error: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe upgrades a request to a websocket connection and registers
// it as a broadcast recipient.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Hub] failed to upgrade websocket: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()
	log.Printf("[Hub] client connected, total=%d", len(h.clients))

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
			log.Printf("[Hub] client disconnected, total=%d", len(h.clients))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[Hub] websocket error: %v", err)
				}
				break
			}
		}
	}()
}

// Broadcast pushes data to every connected client.
func (h *Hub) Broadcast(data []byte) {
	h.broadcast <- data
}

// MarkSynced latches the synced flag on its first call; subsequent
// calls are no-ops, matching the one-shot "has completed at least one
// cycle" contract GET /healthz needs.
func (h *Hub) MarkSynced() {
	h.syncedOnce.Do(func() { h.synced.Store(true) })
}

// Synced reports whether at least one reconciliation cycle has
// published successfully.
func (h *Hub) Synced() bool {
	return h.synced.Load()
}
