package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/gorilla/websocket"
)

// Client is one websocket connection. room is guarded by the hub lock.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	principal *domain.Principal
	room      string
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	opts := c.hub.opts
	pongWait := opts.PingInterval * 2

	c.conn.SetReadLimit(opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Websocket closed unexpectedly", slog.Any("error", err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.hub.sendTo(c, EventError, errorPayload("malformed frame"))
			continue
		}

		c.handle(frame)
	}
}

func (c *Client) handle(frame Frame) {
	switch frame.Event {
	case EventIdentify:
		var data identifyData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			c.hub.sendTo(c, EventError, errorPayload("malformed identify"))
			return
		}
		if err := c.identify(data); err != nil {
			c.hub.sendTo(c, EventError, errorPayload(err.Error()))
			return
		}
		c.hub.sendTo(c, EventIdentified, map[string]string{"room": c.currentRoom()})

	case EventFeedback:
		var data feedbackData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			c.hub.sendTo(c, EventError, errorPayload("malformed feedback"))
			return
		}
		message := strings.TrimSpace(data.Message)
		if message == "" || c.principal == nil || c.hub.onFeedback == nil {
			return
		}
		c.hub.onFeedback(context.Background(), *c.principal, message)

	default:
		c.hub.sendTo(c, EventError, errorPayload("unknown event "+frame.Event))
	}
}

// identify joins the room matching the authenticated principal
func (c *Client) identify(data identifyData) error {
	if c.principal == nil {
		return errors.New("identify requires an authenticated connection")
	}
	if c.principal.ID != data.UserID || c.principal.Role != data.Role {
		return errors.New("identity does not match token")
	}

	room, ok := domain.RoomFor(data.Role, data.UserID)
	if !ok {
		return errors.New("unknown role")
	}

	if !c.hub.join(c, room) {
		return errors.New("connection already identified")
	}
	return nil
}

func (c *Client) currentRoom() string {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	return c.room
}

func (c *Client) writePump() {
	opts := c.hub.opts
	ticker := time.NewTicker(opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}
