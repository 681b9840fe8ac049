package server

import (
	"go.uber.org/zap"
)

// Hub fans frames out to every websocket client watching one duel. Clients
// register and unregister through channels; the run loop owns the client set
// and every send channel close, so no lock is needed.
type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan directFrame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// directFrame targets a single client instead of the whole duel.
type directFrame struct {
	client *Client
	frame  []byte
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		direct:     make(chan directFrame, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client registered", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("client unregistered", zap.Int("clients", len(h.clients)))
			}

		case frame := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					// Slow consumers are dropped.
					delete(h.clients, client)
					close(client.send)
				}
			}

		case d := <-h.direct:
			if h.clients[d.client] {
				select {
				case d.client.send <- d.frame:
				default:
					delete(h.clients, d.client)
					close(d.client.send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (h *Hub) stop() {
	close(h.done)
}
