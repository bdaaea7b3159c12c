package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/netview/pkg/events"
	"github.com/matzehuels/netview/pkg/view"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024

	// sendBuffer bounds the frames queued per client. A slow client drops
	// frames rather than stalling the view.
	sendBuffer = 32
)

// Message types pushed to websocket clients.
const (
	MsgScene     = "scene"
	MsgSelection = "selection"
	MsgResult    = "result"
)

// Inbound message types.
const (
	MsgCommand    = "command"
	MsgClick      = "click"
	MsgBackground = "background"
)

// Outbound is a frame pushed to clients.
type Outbound struct {
	Type      string            `json:"type"`
	Scene     *view.Scene       `json:"scene,omitempty"`
	Selection *events.Selection `json:"selection,omitempty"`
	Result    *CommandResponse  `json:"result,omitempty"`
}

// Inbound is a frame received from a client.
type Inbound struct {
	Type    string            `json:"type"`
	Command *view.HostCommand `json:"command,omitempty"`
	Node    string            `json:"node,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub fans frames out to connected websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *log.Logger
}

func newHub(logger *log.Logger) *Hub {
	return &Hub{clients: make(map[*client]struct{}), logger: logger}
}

type client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client and returns how many accepted it.
func (h *Hub) Broadcast(msg Outbound) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode frame", "type", msg.Type, "err", err)
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.clients {
		select {
		case c.send <- data:
			sent++
		default:
		}
	}
	return sent
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", "client", c.id, "clients", n)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
		h.logger.Debug("client disconnected", "client", c.id)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}

// serve upgrades r and pumps frames until the connection drops. handle runs
// for every decoded inbound frame on the read goroutine.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, first []byte, handle func(*client, Inbound)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	if first != nil {
		c.send <- first
	}
	h.add(c)
	go h.writePump(c)
	h.readPump(c, handle)
}

func (h *Hub) readPump(c *client, handle func(*client, Inbound)) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
				h.logger.Warn("websocket read", "client", c.id, "err", err)
			}
			return
		}
		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Warn("invalid websocket frame", "client", c.id, "err", err)
			continue
		}
		handle(c, msg)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write", "client", c.id, "err", err)
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

// reply queues msg for a single client without blocking.
func (h *Hub) reply(c *client, msg Outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
