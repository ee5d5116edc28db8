// Package realtime pushes domain events to dashboard clients over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/scheduling"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Client-facing event names
const (
	EventLineItemUpdated       = "lineItemUpdated"
	EventAppointmentUpdated    = "appointmentUpdated"
	EventUnavailabilityUpdated = "unavailabilityUpdated"
	EventTransactionUpdated    = "transactionUpdated"
)

// eventNames maps domain event types to what clients subscribe to
var eventNames = map[string]string{
	order.EventTypeLineItemCreated:            EventLineItemUpdated,
	order.EventTypeLineItemStatusChanged:      EventLineItemUpdated,
	scheduling.EventTypeAppointmentUpdated:    EventAppointmentUpdated,
	scheduling.EventTypeUnavailabilityCreated: EventUnavailabilityUpdated,
	scheduling.EventTypeUnavailabilityDeleted: EventUnavailabilityUpdated,
	order.EventTypeTransactionCreated:         EventTransactionUpdated,
	order.EventTypePaymentApplied:             EventTransactionUpdated,
}

const (
	defaultSendBuffer   = 16
	defaultPongWait     = 60 * time.Second
	defaultWriteTimeout = 10 * time.Second
	maxReadBytes        = 512
)

// Envelope is the JSON frame sent for every event
type Envelope struct {
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Config holds hub settings
type Config struct {
	SendBuffer   int
	PongWait     time.Duration
	WriteTimeout time.Duration
	// AllowedOrigins restricts browser origins; empty allows any
	AllowedOrigins []string
}

// Hub fans domain events out to connected clients. Superadmins receive every
// event; other clients only events of their own branch. A client whose send
// buffer is full is disconnected.
type Hub struct {
	cfg      Config
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	scope shared.Scope
	conn  *websocket.Conn
	send  chan []byte
}

// NewHub creates a hub
func NewHub(cfg Config, logger *zap.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		cfg:     cfg,
		logger:  logger.Named("realtime"),
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.cfg.AllowedOrigins, origin)
}

// EventTypes lists the domain events forwarded to clients
func (h *Hub) EventTypes() []string {
	types := make([]string, 0, len(eventNames))
	for t := range eventNames {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Handle forwards a domain event to the clients allowed to see it
func (h *Hub) Handle(_ context.Context, e shared.DomainEvent) error {
	name, ok := eventNames[e.EventType()]
	if !ok {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Envelope{Event: name, Data: data, OccurredAt: e.OccurredAt()})
	if err != nil {
		return err
	}
	h.broadcast(e.BranchID(), frame)
	return nil
}

var _ shared.EventHandler = (*Hub)(nil)

func (c *client) wants(branchID string) bool {
	return c.scope.Superadmin || branchID == "" || c.scope.BranchID == branchID
}

func (h *Hub) broadcast(branchID string, frame []byte) {
	var slow []*client

	h.mu.RLock()
	for c := range h.clients {
		if !c.wants(branchID) {
			continue
		}
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client", zap.String("branch_id", c.scope.BranchID))
		h.unregister(c)
	}
}

// Serve upgrades the request and streams events until the client goes away.
// The caller has already authenticated the request and resolved scope.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, scope shared.Scope) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response
		return
	}

	c := &client{scope: scope, conn: conn, send: make(chan []byte, h.cfg.SendBuffer)}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.cfg.WriteTimeout))
		_ = conn.Close()
		return
	}
	defer h.unregister(c)

	go h.writePump(c)
	h.readPump(c)
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run blocks until ctx is cancelled, then disconnects every client
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.logger.Info("Realtime hub stopped")
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// writePump forwards queued frames and pings until send is closed
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes control frames and returns when the connection dies
func (h *Hub) readPump(c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxReadBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
