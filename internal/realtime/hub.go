// Package realtime pushes route status changes to passengers over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 16
)

// EventType names a route status change.
type EventType string

const (
	EventAvailability EventType = "availability"
	EventActive       EventType = "active"
	EventLocation     EventType = "location"
	EventUpdated      EventType = "updated"
	EventDeleted      EventType = "deleted"
)

// Event is one message delivered to subscribers.
type Event struct {
	Type      EventType   `json:"type"`
	RouteID   uint        `json:"route_id"`
	BusNumber string      `json:"bus_number,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	At        time.Time   `json:"at"`
}


type client struct {
	conn    *websocket.Conn
	send    chan []byte
	routeID uint // 0 subscribes to every route
}

func (c *client) wants(e Event) bool {
	return c.routeID == 0 || c.routeID == e.RouteID
}

// Hub fans route events out to connected clients.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	done       chan struct{}

	upgrader websocket.Upgrader
	origins  map[string]bool

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub accepts upgrades from the given browser origins. With no origins
// every origin is accepted.
func NewHub(allowedOrigins ...string) *Hub {
	h := &Hub{
		origins:    make(map[string]bool, len(allowedOrigins)),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 100),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
	}
	for _, o := range allowedOrigins {
		h.origins[o] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin lets non-browser clients, which send no Origin, through.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || len(h.origins) == 0 || h.origins[origin]
}

// Run delivers events until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.remove(c)
		case e := <-h.broadcast:
			h.deliver(e)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) deliver(e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		logrus.WithError(err).WithField("type", e.Type).Error("realtime: marshal event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.wants(e) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			// slow consumer
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// Publish queues an event without blocking. Events are dropped when the
// queue is full.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case h.broadcast <- e:
	default:
		logrus.WithFields(logrus.Fields{"type": e.Type, "route_id": e.RouteID}).
			Warn("realtime: broadcast queue full, dropping event")
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and subscribes the connection to events
// for routeID, or to all routes when routeID is 0.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, routeID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), routeID: routeID}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return nil
	}

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("realtime: client closed unexpectedly")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
