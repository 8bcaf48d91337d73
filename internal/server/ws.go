package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
)

// WSMessage is the envelope for all WebSocket communication.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client is one connected spectator or player screen. A client watches a
// single game; actions still arrive over HTTP, the socket is push-only
// apart from subscription switches.
type Client struct {
	ID     string
	GameID string
	conn   *websocket.Conn
	send   chan WSMessage
}

// Hub manages WebSocket clients and per-game broadcasting.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	games   map[string]map[string]*Client

	readLimit    int64
	pingInterval time.Duration
	logger       *slog.Logger
	metrics      *Metrics
}

func NewHub(readLimit int64, pingInterval time.Duration, metrics *Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		games:        make(map[string]map[string]*Client),
		readLimit:    readLimit,
		pingInterval: pingInterval,
		metrics:      metrics,
		logger:       logger,
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("ws accept", "err", err)
		return
	}
	conn.SetReadLimit(h.readLimit)

	client := &Client{
		ID:   uuid.New().String(),
		conn: conn,
		send: make(chan WSMessage, 64),
	}

	h.register(client)
	defer h.unregister(client)
	h.metrics.IncrWSConn()
	defer h.metrics.DecrWSConn()

	if gameID := r.URL.Query().Get("game_id"); gameID != "" {
		h.Watch(client.ID, gameID)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writePump(ctx, client)
	h.readPump(ctx, client)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.send)
	}
	if c.GameID != "" {
		if gm, ok := h.games[c.GameID]; ok {
			delete(gm, c.ID)
			if len(gm) == 0 {
				delete(h.games, c.GameID)
			}
		}
	}
}

// Watch points a client's subscription at a game.
func (h *Hub) Watch(clientID, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	if c.GameID != "" && c.GameID != gameID {
		if gm, ok := h.games[c.GameID]; ok {
			delete(gm, c.ID)
		}
	}
	c.GameID = gameID
	if _, ok := h.games[gameID]; !ok {
		h.games[gameID] = make(map[string]*Client)
	}
	h.games[gameID][c.ID] = c
}

// BroadcastGame pushes a message to every client watching a game. Slow
// clients are skipped, never waited on.
func (h *Hub) BroadcastGame(gameID string, msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	gm, ok := h.games[gameID]
	if !ok {
		return
	}
	for _, c := range gm {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("client send buffer full", "client", c.ID)
		}
	}
}

// PushSnapshot marshals and broadcasts a game-state payload.
func (h *Hub) PushSnapshot(gameID string, snapshot any) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error("marshal snapshot", "err", err)
		return
	}
	h.BroadcastGame(gameID, WSMessage{Type: "state", Payload: raw})
}

func (h *Hub) readPump(ctx context.Context, c *Client) {
	defer func() {
		if err := c.conn.CloseNow(); err != nil {
			h.logger.Error("close conn", "err", err)
		}
	}()
	for {
		var msg WSMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			return
		}
		// The only inbound message is a subscription switch.
		if msg.Type == "watch" {
			var p struct {
				GameID string `json:"game_id"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err == nil && p.GameID != "" {
				h.Watch(c.ID, p.GameID)
			}
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *Client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, c.conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
