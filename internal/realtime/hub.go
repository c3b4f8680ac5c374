// Package realtime implements the real-time channel of spec §4.3:
// one logical channel per authenticated user, fanned out across
// process instances over Redis pub/sub so a notification emitted on
// one instance reaches a client connected to another. The connection
// loop (ping/pong keepalive, read/write deadlines, per-connection send
// channel, origin check) is grounded on
// Generativebots-ocx-backend-go-svc's spoke/hub pattern, adapted from
// tenant/agent addressing to per-user addressing.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/metrics"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
	fanoutChannel = "artemis:realtime:fanout"
)

type envelope struct {
	UserID  string          `json:"user_id"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type outgoing struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type connection struct {
	userID string
	conn   *websocket.Conn
	send   chan outgoing
}

// Hub keeps the local process's user->connections map and fans
// messages out to sibling processes via Redis pub/sub.
type Hub struct {
	mu            sync.RWMutex
	conns         map[string]map[*connection]bool
	redis         *redis.Client
	log           *logrus.Entry
	upgrader      websocket.Upgrader
	notifications NotificationActions
}

func NewHub(redisClient *redis.Client, allowedOrigins []string, log *logrus.Entry) *Hub {
	originSet := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		originSet[o] = true
	}

	h := &Hub{
		conns: make(map[string]map[*connection]bool),
		redis: redisClient,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				return originSet[r.Header.Get("Origin")]
			},
		},
	}
	return h
}

// Run subscribes to the fan-out channel and must be started once
// before any client connects.
func (h *Hub) Run(ctx context.Context) {
	sub := h.redis.Subscribe(ctx, fanoutChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.log.WithError(err).Warn("malformed realtime fanout message")
				continue
			}
			h.deliverLocal(env.UserID, env.Event, env.Payload)
		}
	}
}

// PushToUser publishes to the shared fan-out channel; every process
// instance, including this one, receives it and delivers to any
// locally-connected sockets for that user.
func (h *Hub) PushToUser(userID string, event string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Warn("failed to marshal realtime payload")
		return
	}
	env := envelope{UserID: userID, Event: event, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		h.log.WithError(err).Warn("failed to marshal realtime envelope")
		return
	}
	if err := h.redis.Publish(context.Background(), fanoutChannel, data).Err(); err != nil {
		h.log.WithError(err).Warn("realtime fanout publish failed, delivering locally only")
		h.deliverLocal(userID, event, raw)
	}
}

func (h *Hub) deliverLocal(userID, event string, payload json.RawMessage) {
	h.mu.RLock()
	set := h.conns[userID]
	conns := make([]*connection, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var decoded interface{}
	_ = json.Unmarshal(payload, &decoded)

	for _, c := range conns {
		select {
		case c.send <- outgoing{Event: event, Payload: decoded}:
		default:
			h.log.WithField("user_id", userID).Warn("realtime send buffer full, dropping message")
		}
	}
}

// HandleUpgrade upgrades the HTTP connection for an already-
// authenticated user (the handshake's bearer token is verified by the
// same auth.Verifier used for REST requests, before this is called).
func (h *Hub) HandleUpgrade(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &connection{userID: userID, conn: conn, send: make(chan outgoing, 32)}
	h.register(c)
	metrics.WebsocketConnections.Inc()

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.userID] == nil {
		h.conns[c.userID] = make(map[*connection]bool)
	}
	h.conns[c.userID][c] = true
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, c.userID)
		}
	}
	close(c.send)
	metrics.WebsocketConnections.Dec()
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleClientEvent(c, payload)
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
