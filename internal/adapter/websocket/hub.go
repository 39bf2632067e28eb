package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/session"
)

const sessionLocal = "ws_session_key"

// wsConn is the part of *websocket.Conn the hub uses.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type envelope struct {
	sessionKey string
	data       []byte
}

// Hub pushes checkout events to the app connections of the session that
// started the checkout.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Events waiting to be delivered.
	broadcast chan envelope

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	sessions ports.SessionProvider

	mu  sync.RWMutex
	log *zap.Logger
}

type Client struct {
	hub *Hub
	// The websocket connection.
	conn wsConn
	// Buffered channel of outbound messages.
	send chan []byte
	// Session the connection belongs to.
	sessionKey string
}

func NewHub(sessions ports.SessionProvider, log *zap.Logger) *Hub {
	return &Hub{
		sessions:   sessions,
		broadcast:  make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.sessionKey != msg.sessionKey {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					h.log.Warn("Websocket client too slow, dropping it", zap.String("session_key", client.sessionKey))
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Forward queues event for the connections of its session. Events without
// a session key are ignored.
func (h *Hub) Forward(event domain.CheckoutEvent) error {
	if event.SessionKey == "" {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal checkout event: %w", err)
	}
	select {
	case h.broadcast <- envelope{sessionKey: event.SessionKey, data: data}:
		return nil
	case <-h.done:
		return errors.New("websocket hub stopped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) AddClient(conn wsConn, sessionKey string) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256), sessionKey: sessionKey}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// Upgrade accepts only websocket upgrades that carry the key of a live
// session, taken from the X-Session-ID header or the session query parameter.
func (h *Hub) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	key := c.Get("X-Session-ID")
	if key == "" {
		key = c.Query("session")
	}
	if key == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}
	if sess, err := h.sessions.Get(session.WithKey(c.UserContext(), key)); err != nil || sess == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unknown session")
	}
	c.Locals(sessionLocal, key)
	return c.Next()
}

// Handler serves an upgraded connection until it closes.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		key, _ := conn.Locals(sessionLocal).(string)
		h.AddClient(conn, key)
	})
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		// The app never sends anything; reading keeps control frames flowing.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.log.Debug("Websocket write failed", zap.Error(err))
			return
		}
	}
	// The hub closed the channel.
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
