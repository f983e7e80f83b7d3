package websocket

import (
	"sync"

	"recall-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Hub fans ledger updates out to browser tabs watching a project. Clients
// subscribe per project; a merge in one tab shows up in the others.
type Hub struct {
	// ProjectID -> list of clients (multi-tab)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ProjectID] = append(h.clients[client.ProjectID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"project_id": client.ProjectID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ProjectID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ProjectID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ProjectID]) == 0 {
					delete(h.clients, client.ProjectID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToProject sends a payload to every client watching the project.
// Slow clients are dropped rather than allowed to back up the feed.
func (h *Hub) BroadcastToProject(projectID uuid.UUID, payload []byte) {
	h.mu.RLock()
	clients := h.clients[projectID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{
				"project_id": projectID,
			})
			h.unregister <- client
		}
	}
}
