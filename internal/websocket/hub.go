package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/rvemuri2/helix-backend/internal/dto"
	"github.com/rvemuri2/helix-backend/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "helix_cluster_events"

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendSequenceUpdate pushes a sequence change to every connection the user
// has on this instance, then relays it over Redis for other instances.
func (h *Hub) SendSequenceUpdate(userID string, event dto.SequenceUpdatedEvent) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "sequence_updated",
		"data": event,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to serialize sequence update", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(userID, data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userID,
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

func (h *Hub) deliverLocal(userID string, data []byte) {
	h.mu.RLock()
	clients, found := h.clients[userID]
	h.mu.RUnlock()

	if !found {
		return
	}
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to one shared channel carrying
	// {target_user_id, message} envelopes and delivers to the users it
	// holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.deliverLocal(payload.TargetUserID, payload.Message)
	}
}
