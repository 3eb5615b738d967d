package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/welldanyogia/elite-estate/internal/changefeed"
	"github.com/welldanyogia/elite-estate/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeSubscribed  MessageType = "subscribed"
	MessageTypeChange      MessageType = "change"
	MessageTypeError       MessageType = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type   MessageType          `json:"type"`
	Table  string               `json:"table,omitempty"`
	Event  changefeed.EventType `json:"event,omitempty"`
	Record *models.Inquiry      `json:"record,omitempty"`
	At     string               `json:"at,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Hub maintains the set of active clients and broadcasts table changes
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Table subscriptions: table -> set of clients
	subscriptions map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Subscribe to table
	subscribe chan *subscriptionRequest

	// Unsubscribe from table
	unsubscribeTable chan *subscriptionRequest

	// Broadcast to table subscribers
	broadcast chan *broadcastMessage

	// Tables clients may subscribe to
	tables map[string]bool

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger
	logger *slog.Logger
}

type subscriptionRequest struct {
	client *Client
	table  string
}

type broadcastMessage struct {
	table   string
	message []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:          make(map[*Client]bool),
		subscriptions:    make(map[string]map[*Client]bool),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		subscribe:        make(chan *subscriptionRequest),
		unsubscribeTable: make(chan *subscriptionRequest),
		broadcast:        make(chan *broadcastMessage, 256),
		tables:           map[string]bool{changefeed.TableInquiries: true},
		done:             make(chan struct{}),
		logger:           logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				// Closing the connection ends both pumps
				if client.conn != nil {
					client.conn.Close()
				}
				delete(h.clients, client)
			}
			h.subscriptions = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				// Remove from all subscriptions
				for table, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, table)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.subscriptions[req.table] == nil {
				h.subscriptions[req.table] = make(map[*Client]bool)
			}
			h.subscriptions[req.table][req.client] = true
			h.mu.Unlock()
			req.client.sendJSON(WSMessage{Type: MessageTypeSubscribed, Table: req.table})
			if h.logger != nil {
				h.logger.Debug("client subscribed to table", slog.String("table", req.table))
			}

		case req := <-h.unsubscribeTable:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.table]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.table)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed from table", slog.String("table", req.table))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			subscribers := h.subscriptions[msg.table]
			for client := range subscribers {
				select {
				case client.send <- msg.message:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe subscribes a client to a table
func (h *Hub) Subscribe(client *Client, table string) {
	select {
	case h.subscribe <- &subscriptionRequest{client: client, table: table}:
	case <-h.done:
	}
}

// Unsubscribe unsubscribes a client from a table
func (h *Hub) Unsubscribe(client *Client, table string) {
	select {
	case h.unsubscribeTable <- &subscriptionRequest{client: client, table: table}:
	case <-h.done:
	}
}

// KnownTable reports whether clients may subscribe to table
func (h *Hub) KnownTable(table string) bool {
	return h.tables[table]
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish implements changefeed.Publisher by broadcasting to table subscribers
func (h *Hub) Publish(_ context.Context, change changefeed.Change) {
	msg := WSMessage{
		Type:   MessageTypeChange,
		Table:  change.Table,
		Event:  change.Type,
		Record: change.Record,
	}
	if !change.At.IsZero() {
		msg.At = change.At.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{table: change.Table, message: data}:
	default:
		if h.logger != nil {
			h.logger.Warn("broadcast queue full, dropping change", slog.String("table", change.Table))
		}
	}
}
