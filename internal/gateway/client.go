package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxInboundBytes = 4096

// clientRequest is the inbound control message shape. Anything else the
// client sends is ignored.
type clientRequest struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

type clientAck struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

// Client wraps one websocket connection as a hub subscriber. Writes are
// serialized through writeMu; the read loop owns the connection's read side.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub

	writeTimeout time.Duration
	pingInterval time.Duration
	pongTimeout  time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient wraps an upgraded connection. The caller registers the client
// with the hub and starts its loops.
func NewClient(conn *websocket.Conn, hub *Hub, writeTimeout, pingInterval, pongTimeout time.Duration) *Client {
	return &Client{
		id:           uuid.NewString(),
		conn:         conn,
		hub:          hub,
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
		done:         make(chan struct{}),
	}
}

// ID returns the connection's identifier.
func (c *Client) ID() string { return c.id }

// Send writes one text frame under the write deadline.
func (c *Client) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close tears the connection down. Idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// PingLoop sends protocol pings until the client goes away. Pings use
// WriteControl, which is safe alongside Send.
func (c *Client) PingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.writeTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Printf("[gateway] ping %s: %v", c.id, err)
				c.hub.Unregister(c)
				_ = c.Close()
				return
			}
		}
	}
}

// ReadLoop consumes inbound frames: subscribe/unsubscribe requests get an
// ack, pongs extend the read deadline, everything else is ignored. Returns
// when the connection dies, unregistering the client.
func (c *Client) ReadLoop() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[gateway] read %s: %v", c.id, err)
			}
			return
		}

		var req clientRequest
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		switch req.Type {
		case "subscribe":
			c.ack("subscribed", req.Symbols)
			// Replay the latest stored snapshot per series so the client
			// has a baseline before the next live recompute.
			for _, payload := range c.hub.Latest(req.Symbols) {
				if err := c.Send(payload); err != nil {
					return
				}
			}
		case "unsubscribe":
			c.ack("unsubscribed", req.Symbols)
		}
	}
}

func (c *Client) ack(kind string, symbols []string) {
	payload, err := json.Marshal(clientAck{Type: kind, Symbols: symbols})
	if err != nil {
		return
	}
	if err := c.Send(payload); err != nil {
		log.Printf("[gateway] ack %s: %v", c.id, err)
	}
}
