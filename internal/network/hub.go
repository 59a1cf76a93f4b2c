// Package network exposes a running campaign over HTTP and pushes tick
// results to WebSocket clients.
package network

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/engine"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

// Message types pushed to clients.
const (
	MessageTick   = "TICK"
	MessageEvent  = "EVENT"
	MessageAck    = "ACK"
	MessageError  = "ERROR"
	MessageStatus = "STATUS"
)

// Message is the envelope for everything sent over the socket.
type Message struct {
	Type    string            `json:"type"`
	Date    calendar.GameDate `json:"date"`
	Command string            `json:"command,omitempty"`
	Payload interface{}       `json:"payload,omitempty"`
}

// TickSummary is the payload of a TICK message.
type TickSummary struct {
	News           []events.NewsItem       `json:"news"`
	BillUpdates    []engine.BillUpdate     `json:"billUpdates"`
	Errors         []engine.PhaseError     `json:"errors,omitempty"`
	ExecutionOrder []string                `json:"executionOrder"`
	Political      engine.PoliticalUpdates `json:"political"`
}

// WSRecorder observes socket traffic. *metrics.Collector implements it.
type WSRecorder interface {
	RecordWSConnection(delta int)
	RecordWSMessage(incoming bool)
	RecordWSError()
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	session    *engine.Session
	metrics    WSRecorder
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub serving commands against session.
// metrics may be nil.
func NewHub(session *engine.Session, metrics WSRecorder, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		session:    session,
		metrics:    metrics,
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			h.logger.Info("websocket hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.record(func(m WSRecorder) { m.RecordWSConnection(1) })
			h.logger.Debug("websocket client connected", "clients", h.Clients())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("websocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					h.record(func(m WSRecorder) { m.RecordWSMessage(false) })
				default:
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) join(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.conn.Close()
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// drop closes a client's queue. Called with h.mu held.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.record(func(m WSRecorder) { m.RecordWSConnection(-1) })
}

// Clients counts connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish serializes msg and queues it for every client. A full queue drops
// the message rather than stalling the simulation.
func (h *Hub) Publish(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to serialize websocket message", "type", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("websocket broadcast queue full, message dropped", "type", msg.Type)
	}
}

// Observer returns an engine.Observer that pushes every committed tick.
func (h *Hub) Observer() engine.Observer {
	return func(c *campaign.Campaign, res *engine.TickResult) {
		h.Publish(Message{Type: MessageTick, Date: res.Date, Payload: TickSummary{
			News:           res.NewsItems,
			BillUpdates:    res.BillUpdates,
			Errors:         res.Errors,
			ExecutionOrder: res.ExecutionOrder,
			Political:      res.PoliticalUpdates,
		}})
		for _, e := range res.Effects {
			h.Publish(Message{Type: MessageEvent, Date: e.Date, Payload: e})
		}
	}
}

func (h *Hub) record(fn func(WSRecorder)) {
	if h.metrics != nil {
		fn(h.metrics)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // browser clients run on another port in development
	},
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.record(func(m WSRecorder) { m.RecordWSError() })
		h.logger.Warn("failed to upgrade websocket connection", "error", err)
		return
	}
	client := NewClient(h, conn)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
}
