package network

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
	// Minimum spacing between commands from one client.
	commandInterval = 250 * time.Millisecond
	// Upper bound for one command, fast-forwards included.
	commandTimeout = 2 * time.Minute
)

// Command is an incoming request from a client.
type Command struct {
	Type    string          `json:"type"` // "ADVANCE_DAY", "CAST_VOTE", "PROPOSE_BILL", ...
	Payload json.RawMessage `json:"payload"`
}

// Client is one WebSocket connection.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	lastCommand time.Time
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.join(c)
}

// ReadPump reads commands until the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.record(func(m WSRecorder) { m.RecordWSError() })
				c.hub.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		c.hub.record(func(m WSRecorder) { m.RecordWSMessage(true) })

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.reply(Message{Type: MessageError, Payload: errorBody("invalid command: " + err.Error())})
			continue
		}
		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd Command) {
	if time.Since(c.lastCommand) < commandInterval {
		c.hub.logger.Warn("websocket command rate limited", "command", cmd.Type)
		c.reply(Message{Type: MessageError, Command: cmd.Type, Payload: errorBody("rate limited")})
		return
	}
	c.lastCommand = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	result, err := execute(ctx, c.hub.session, cmd.Type, cmd.Payload)
	date := c.hub.session.Campaign().CurrentDate
	if err != nil {
		c.reply(Message{Type: MessageError, Command: cmd.Type, Date: date, Payload: errorBody(err.Error())})
		return
	}
	c.hub.logger.Event("WS_COMMAND", "player", cmd.Type)
	c.reply(Message{Type: MessageAck, Command: cmd.Type, Date: date, Payload: result})
}

// reply queues a message for this client only.
func (c *Client) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("failed to serialize websocket reply", "error", err)
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
		c.hub.record(func(m WSRecorder) { m.RecordWSMessage(false) })
	default:
		c.hub.logger.Warn("websocket reply dropped, client queue full")
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.record(func(m WSRecorder) { m.RecordWSError() })
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
