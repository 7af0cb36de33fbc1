package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one websocket connection of a session's page.
type Client struct {
	hub     *Hub
	session string
	conn    *websocket.Conn
	send    chan []byte
	dropped bool // guarded by hub.mu
}

// Hub tracks the connections of every session and pushes events to them.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zap.Logger

	// OnDisconnect runs when the last connection of a session goes away.
	onDisconnect func(sessionID string)

	mu      sync.Mutex
	clients map[string]map[*Client]bool
}

func NewHub(logger *zap.Logger, onDisconnect func(sessionID string)) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		logger:       logger,
		onDisconnect: onDisconnect,
		clients:      make(map[string]map[*Client]bool),
	}
}

// Run serves registrations until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.session] == nil {
				h.clients[client.session] = make(map[*Client]bool)
			}
			h.clients[client.session][client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", zap.String("session", client.session))
		case client := <-h.unregister:
			h.mu.Lock()
			last := h.removeLocked(client)
			h.mu.Unlock()
			h.logger.Debug("websocket client unregistered", zap.String("session", client.session))
			if last && h.onDisconnect != nil {
				h.onDisconnect(client.session)
			}
		case <-h.done:
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every connection.
func (h *Hub) Stop() {
	close(h.done)
}

// removeLocked drops client and reports whether its session has no
// connection left.
func (h *Hub) removeLocked(client *Client) bool {
	set := h.clients[client.session]
	if !client.dropped {
		if !set[client] {
			return false
		}
		delete(set, client)
		close(client.send)
	}
	if len(set) == 0 {
		delete(h.clients, client.session)
		return true
	}
	return false
}

type WSEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Publish sends an event to every connection of a session. It never blocks:
// a client whose buffer is full is dropped.
func (h *Hub) Publish(sessionID, eventType string, data interface{}) {
	payload, err := json.Marshal(WSEvent{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("marshal ws event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[sessionID] {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("dropping slow websocket client", zap.String("session", sessionID))
			delete(h.clients[sessionID], client)
			client.dropped = true
			close(client.send)
		}
	}
}

// Disconnect closes every connection of a session.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[sessionID] {
		client.dropped = true
		close(client.send)
	}
	delete(h.clients, sessionID)
}

// Connections counts the open connections of a session.
func (h *Hub) Connections(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}

// ServeWs upgrades the request and attaches it to sessionID.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	client := &Client{hub: h, session: sessionID, conn: conn, send: make(chan []byte, 16)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// The page only sends keepalives; events travel over the JSON API.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
