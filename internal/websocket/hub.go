package websocket

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
)

// Hub fans committed change events out to every open viewer connection.
// All state lives in the Run goroutine; register, unregister and count
// requests arrive over channels, so adding or dropping a client while a
// broadcast is in flight can never corrupt delivery to the others.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	countReq   chan chan int
	log        zerolog.Logger
}

// NewHub creates a hub; call Run to start it.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		countReq:   make(chan chan int),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Register attaches a client to the fan-out set.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister detaches a client; its send channel is closed exactly once.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// ClientCount reports the number of connected viewers.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	h.countReq <- reply
	return <-reply
}

// Run subscribes to the bus and broadcasts each event to every client
// until ctx is cancelled. Events published before a client registers are
// never replayed to it.
func (h *Hub) Run(ctx context.Context, bus *event.Bus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	h.log.Info().Msg("fan-out hub started")

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug().Int("clients", len(h.clients)).Msg("viewer connected")

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.log.Debug().Int("clients", len(h.clients)).Msg("viewer disconnected")
			}

		case reply := <-h.countReq:
			reply <- len(h.clients)

		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			h.broadcast(ev)
		}
	}
}

// broadcast serializes ev once and queues it on every client. A client
// whose send buffer is full is treated as stalled and dropped on the
// spot rather than blocking delivery to the rest.
func (h *Hub) broadcast(ev event.Event) {
	payload, err := encodeEvent(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(ev.Type)).Msg("event encode failed")
		return
	}

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.Warn().Msg("stalled viewer dropped during broadcast")
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}
