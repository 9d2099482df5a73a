package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// writeWait bounds a single frame write; a connection that cannot
	// take a frame within it is treated as disconnected.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// dropped; pings go out at pingPeriod to keep healthy ones alive.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Viewers only listen; anything beyond a pong is ignored.
	maxMessageSize = 512

	// sendBuffer is the per-client outbound queue. Overflow means the
	// client is stalled and the hub drops it.
	sendBuffer = 32
)

// Client is one open viewer connection managed by the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger
}

// NewClient wraps an upgraded connection. The caller registers it with
// the hub and starts the pumps via Serve.
func NewClient(hub *Hub, conn *websocket.Conn, log zerolog.Logger) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		log:  log.With().Str("component", "ws_client").Logger(),
	}
}

// Serve registers the client, sends the hello frame and runs both pumps.
// It returns when the connection dies; the client is unregistered and
// the connection closed by then.
func (c *Client) Serve() {
	c.hub.Register(c)

	if hello, err := encodeHello(); err == nil {
		select {
		case c.send <- hello:
		default:
		}
	}

	go c.writePump()
	c.readPump()
}

// readPump discards inbound frames (viewers are read-only) while
// enforcing the pong deadline. On any read error the client is
// unregistered, which closes the send channel and ends the write pump.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("unexpected close")
			}
			return
		}
	}
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with periodic pings. Each write carries a deadline so
// one stalled peer cannot hold the pump.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub dropped this client.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
