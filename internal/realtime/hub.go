// Package realtime pushes ticket snapshots and new tickets to websocket clients.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/supportops/internal/api/dto"
	"github.com/spec-kit/supportops/internal/domain"
)

// Event names sent to clients.
const (
	EventInit      = "init"
	EventTicketNew = "ticket:new"
)

// ErrHubClosed is returned by Register after Close.
var ErrHubClosed = errors.New("realtime: hub closed")

// Message is the envelope written to every client.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// InitPayload carries the full ticket list sent on connect.
type InitPayload struct {
	Tickets []dto.TicketResponse `json:"tickets"`
}

// closeWriteWait bounds how long the close frame may take to send.
const closeWriteWait = time.Second

// Conn is the part of a websocket connection the hub needs.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	Close() error
}

// SnapshotFunc returns the current ticket list, newest first.
type SnapshotFunc func(ctx context.Context) ([]domain.Ticket, error)

// Hub tracks connected clients. Each client has a bounded queue; a client
// that cannot keep up is dropped and has to reconnect to resync.
type Hub struct {
	mu       sync.Mutex
	clients  map[*Client]struct{}
	snapshot SnapshotFunc
	buffer   int
	logger   *zap.Logger
	closed   bool
}

// NewHub builds a hub. buffer is the per-client queue length.
func NewHub(snapshot SnapshotFunc, buffer int, logger *zap.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:  make(map[*Client]struct{}),
		snapshot: snapshot,
		buffer:   buffer,
		logger:   logger,
	}
}

// Register adds conn and queues the init snapshot ahead of any broadcast.
func (h *Hub) Register(ctx context.Context, conn Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	tickets, err := h.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("realtime: snapshot: %w", err)
	}

	client := newClient(ulid.Make().String(), conn, h.buffer)
	client.send <- Message{Event: EventInit, Data: InitPayload{Tickets: dto.TicketsFromDomain(tickets)}}
	h.clients[client] = struct{}{}
	return client, nil
}

// Unregister removes client. Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// Broadcast queues a ticket:new message for every client.
func (h *Hub) Broadcast(ticket dto.TicketResponse) {
	msg := Message{Event: EventTicketNew, Data: ticket}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client", zap.String("client_id", client.ID))
			h.removeLocked(client)
		}
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for client := range h.clients {
		h.removeLocked(client)
	}
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

// Client is one websocket connection.
type Client struct {
	ID        string
	conn      Conn
	send      chan Message
	closeOnce sync.Once
}

func newClient(id string, conn Conn, buffer int) *Client {
	return &Client{ID: id, conn: conn, send: make(chan Message, buffer)}
}

// WritePump writes queued messages until the hub closes the queue. It is the
// only writer on the connection.
func (c *Client) WritePump() {
	defer c.closeConn()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.closeConn()
			for range c.send {
			}
			return
		}
	}
}

// closeConn sends a close frame and unblocks the connection's reader. A
// hijacked Fiber connection ignores Close; the socket is released only when
// the handler returns, which the expired read deadline forces.
func (c *Client) closeConn() {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
		_ = c.conn.SetReadDeadline(time.Now())
		_ = c.conn.Close()
	})
}
