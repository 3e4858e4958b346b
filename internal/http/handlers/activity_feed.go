package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/book-catalog/backend/internal/auth"
	"github.com/book-catalog/backend/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const feedWriteTimeout = 5 * time.Second

type feedClient struct {
	userID   string
	onlyMine bool
}

// ActivityFeed pushes every appended activity to connected websocket clients.
type ActivityFeed struct {
	verifier   auth.Verifier
	subscriber events.Subscriber
	log        *zap.Logger
	mu         sync.RWMutex
	clients    map[*websocket.Conn]feedClient
}

func NewActivityFeed(verifier auth.Verifier, subscriber events.Subscriber, log *zap.Logger) *ActivityFeed {
	return &ActivityFeed{
		verifier:   verifier,
		subscriber: subscriber,
		log:        log,
		clients:    make(map[*websocket.Conn]feedClient),
	}
}

func (h *ActivityFeed) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.ChannelActivity, h.broadcast)
}

func (h *ActivityFeed) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	userID, _ := event.Payload["userId"].(string)

	h.mu.RLock()
	targets := make(map[*websocket.Conn]string, len(h.clients))
	for conn, cl := range h.clients {
		if cl.onlyMine && cl.userID != userID {
			continue
		}
		targets[conn] = cl.userID
	}
	h.mu.RUnlock()

	// Writes happen outside the lock; a stalled client only costs feedWriteTimeout and is then dropped.
	var failed []*websocket.Conn
	for conn, uid := range targets {
		_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("activity feed write failed, dropping client", zap.String("user_id", uid), zap.Error(err))
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		h.drop(conn)
	}
}

func (h *ActivityFeed) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

func (h *ActivityFeed) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// HandleWS authenticates with ?token=...; ?scope=mine limits the feed to the caller's own activities.
func (h *ActivityFeed) HandleWS(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	actor, err := h.verifier.Verify(ctx, tokenStr)
	cancel()
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	h.mu.Lock()
	h.clients[conn] = feedClient{userID: actor.UserID, onlyMine: conn.Query("scope") == "mine"}
	h.mu.Unlock()
	h.log.Debug("activity feed client connected", zap.String("user_id", actor.UserID))

	defer h.drop(conn)

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
