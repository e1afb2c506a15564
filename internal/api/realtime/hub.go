package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/authn"
	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client events
const (
	EventIdentify = "identify"
	EventFeedback = "feedback"
)

// Server replies to client events
const (
	EventIdentified = "identified"
	EventError      = "error"
)

const (
	defaultSendBuffer     = 32
	defaultPingInterval   = 25 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultMaxMessageSize = 4096
)

// Options tunes the hub. Zero values fall back to defaults.
type Options struct {
	SendBuffer     int
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.PingInterval <= 0 {
		o.PingInterval = defaultPingInterval
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = defaultMaxMessageSize
	}
	return o
}

// Frame is the JSON envelope of every websocket message in both directions
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type identifyData struct {
	Role   domain.Role `json:"role"`
	UserID string      `json:"userId"`
}

type feedbackData struct {
	Message string `json:"message"`
}

// FeedbackFunc receives feedback sent by an identified client
type FeedbackFunc func(ctx context.Context, from domain.Principal, message string)

// Publisher forwards broadcasts to other replicas
type Publisher interface {
	Publish(ctx context.Context, msg RelayMessage) error
}

// Hub tracks websocket clients and their rooms
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	opts       Options
	upgrader   websocket.Upgrader
	onFeedback FeedbackFunc
	relay      Publisher
	logger     *slog.Logger
}

func NewHub(opts Options, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		opts:    opts.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// OnFeedback sets the feedback callback. Call before serving.
func (h *Hub) OnFeedback(fn FeedbackFunc) {
	h.onFeedback = fn
}

// SetRelay makes Broadcast also publish to other replicas. Call before serving.
func (h *Hub) SetRelay(relay Publisher) {
	h.relay = relay
}

// ServeWS upgrades the request. The principal placed on the context by
// authn.OptionalMiddleware is the only identity a client may claim.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.opts.SendBuffer),
	}
	if principal, ok := authn.PrincipalFrom(c); ok {
		client.principal = &principal
	}

	h.register(client)

	go client.writePump()
	go client.readPump()
}

// Broadcast sends event to every client in room, or to every client when
// room is empty. Delivery is best effort. Only an encoding failure is
// returned: once local clients have the frame a relay failure is logged,
// so a retrying caller never hands them the same frame twice.
func (h *Hub) Broadcast(event string, payload any, room string) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.Deliver(room, frame)

	if h.relay != nil {
		msg := RelayMessage{Room: room, Frame: frame}
		if err := h.relay.Publish(context.Background(), msg); err != nil {
			metrics.RealtimeRelayFailed()
			h.logger.Warn("Failed to relay realtime broadcast",
				slog.String("event", event),
				slog.String("room", room),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

// Deliver writes an encoded frame to the local clients of room
func (h *Hub) Deliver(room string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if room != "" && client.room != room {
			continue
		}
		select {
		case client.send <- frame:
		default:
			metrics.RealtimeDropped()
			h.logger.Debug("Dropping realtime frame for slow client", slog.String("room", room))
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients joined to room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for client := range h.clients {
		if client.room == room {
			n++
		}
	}
	return n
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.conn.Close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	metrics.RealtimeConnected()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.RealtimeDisconnected()
	}
	h.mu.Unlock()
}

// join sets the room of c once. It reports false when c already has a room.
func (h *Hub) join(c *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.room != "" {
		return false
	}
	c.room = room
	return true
}

// sendTo queues a reply for one client without blocking
func (h *Hub) sendTo(c *Client, event string, payload any) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		h.logger.Error("Failed to encode realtime reply", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
		metrics.RealtimeDropped()
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}

	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", event, err)
	}
	return frame, nil
}
