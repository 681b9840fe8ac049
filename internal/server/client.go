package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/reikiduel/reiki-server-go/internal/game"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// WSMessage is the envelope for every frame on a duel websocket.
//
// Server to client: "hello" (snapshot on connect), "event" (one bus event),
// "error" (a rejected or malformed request).
// Client to server: "action" (a game.ActionRequest in data), "ping".
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func marshalFrame(logger *zap.Logger, frameType string, payload any) ([]byte, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Error("marshal frame payload", zap.String("type", frameType), zap.Error(err))
		return nil, false
	}
	frame, err := json.Marshal(WSMessage{Type: frameType, Data: raw})
	if err != nil {
		logger.Error("marshal frame", zap.String("type", frameType), zap.Error(err))
		return nil, false
	}
	return frame, true
}

// Client is one websocket connection bound to a duel. A client with a seat
// may submit actions for it; a spectator only receives.
type Client struct {
	logger *zap.Logger
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	sess   *game.Session
	seat   *game.Seat
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("malformed frame")
			continue
		}

		switch msg.Type {
		case "action":
			c.handleAction(msg.Data)
		case "ping":
			// Keepalive only.
		default:
			c.sendError("unknown frame type: " + msg.Type)
		}
	}
}

func (c *Client) handleAction(data json.RawMessage) {
	if c.seat == nil {
		c.sendError("spectators cannot act")
		return
	}

	var req game.ActionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("malformed action")
		return
	}
	// The seat comes from the connection, not the frame.
	req.Seat = *c.seat

	if err := c.sess.Submit(req); err != nil {
		switch {
		case errors.Is(err, game.ErrSessionFinished):
			c.sendError("session finished")
		case errors.Is(err, game.ErrInvalidAction):
			c.sendError(err.Error())
		default:
			c.sendError("action failed")
		}
	}
}

// sendError routes through the hub; once a client is registered only the
// hub's run loop writes to or closes its send channel.
func (c *Client) sendError(reason string) {
	frame, ok := marshalFrame(c.logger, "error", reason)
	if !ok {
		return
	}
	select {
	case c.hub.direct <- directFrame{client: c, frame: frame}:
	case <-c.hub.done:
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	// The hub closed the send channel; tell the peer before hanging up.
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
