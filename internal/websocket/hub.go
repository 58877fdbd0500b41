package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"trail-backend/internal/logger"
	"trail-backend/internal/models"
)

const writeWait = 10 * time.Second

// TokenParser resolves a bearer token to the owner it was issued for.
type TokenParser func(token string) (uuid.UUID, error)

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex // gorilla connections allow one writer at a time
}

func (c *conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Hub fans generation events out to an owner's open connections. With Redis
// configured events travel over pub/sub so any instance can deliver them;
// without it they are delivered in-process.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*conn
	redisClient *redis.Client
	parseToken  TokenParser
	cancelFuncs map[uuid.UUID]context.CancelFunc
	upgrader    websocket.Upgrader
	log         *logger.Logger
}

func NewHub(redisClient *redis.Client, parseToken TokenParser, allowedOrigin string, log *logger.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*conn),
		redisClient: redisClient,
		parseToken:  parseToken,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
		log: log.With("component", "ws_hub"),
	}
}

func channelFor(ownerID uuid.UUID) string {
	return "owner_updates:" + ownerID.String()
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ownerID, err := h.parseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err.Error())
		return
	}

	c := &conn{ws: ws}
	h.registerConnection(ownerID, c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(ownerID, c)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(ownerID uuid.UUID, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[ownerID] = append(h.connections[ownerID], c)

	// Start pub/sub subscription if this is the first connection for this owner
	if h.redisClient != nil && len(h.connections[ownerID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[ownerID] = cancel
		go h.subscribeToPubSub(ctx, ownerID)
	}

	h.log.Debug("websocket connected", "owner_id", ownerID.String(), "connections", len(h.connections[ownerID]))
}

func (h *Hub) unregisterConnection(ownerID uuid.UUID, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.ws.Close()

	conns := h.connections[ownerID]
	for i, existing := range conns {
		if existing == c {
			h.connections[ownerID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[ownerID]) == 0 {
		delete(h.connections, ownerID)
		if cancel, ok := h.cancelFuncs[ownerID]; ok {
			cancel()
			delete(h.cancelFuncs, ownerID)
		}
	}

	h.log.Debug("websocket disconnected", "owner_id", ownerID.String())
}

func (h *Hub) subscribeToPubSub(ctx context.Context, ownerID uuid.UUID) {
	pubsub := h.redisClient.Subscribe(ctx, channelFor(ownerID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(ownerID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(ownerID uuid.UUID, data []byte) {
	h.mu.RLock()
	conns := append([]*conn(nil), h.connections[ownerID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			h.log.Debug("websocket write failed", "owner_id", ownerID.String(), "error", err.Error())
		}
	}
}

// Publish delivers msg to every connection the owner has open.
func (h *Hub) Publish(ctx context.Context, ownerID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if h.redisClient == nil {
		h.broadcast(ownerID, data)
		return
	}
	if err := h.redisClient.Publish(ctx, channelFor(ownerID), string(data)).Err(); err != nil {
		h.log.Warn("publish failed, delivering locally", "owner_id", ownerID.String(), "error", err.Error())
		h.broadcast(ownerID, data)
	}
}
