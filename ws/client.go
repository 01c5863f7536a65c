package ws

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"connectrix/domain"

	"github.com/gorilla/websocket"
)

const (
	pongWait      = 60 * time.Second
	pingInterval  = 54 * time.Second
	writeDeadline = 10 * time.Second
)

// Client is one live WebSocket connection. An unauthenticated client may
// exist transiently, but until authenticate succeeds its only accepted
// event is authenticate itself.
type Client struct {
	conn         *websocket.Conn
	server       *Server
	sink         *Sink
	connectionID string
	session      *domain.Session
	log          *slog.Logger
}

func newClient(conn *websocket.Conn, server *Server, connectionID string, log *slog.Logger) *Client {
	return &Client{
		conn:         conn,
		server:       server,
		sink:         NewSink(log, server.connectionBufferSize),
		connectionID: connectionID,
		log:          log,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.server.relay.CloseSession(c.connectionID)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		c.server.dispatch(c, raw)
	}
}

func (c *Client) logReadError(err error) {
	switch {
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Debug("Client disconnected", "connection_id", c.connectionID)
	case errors.Is(err, io.EOF):
		c.log.Debug("Connection closed", "connection_id", c.connectionID)
	default:
		c.log.Warn("WebSocket read error", "connection_id", c.connectionID, "error", err)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.sink.Frames():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("Write failed, closing connection", "connection_id", c.connectionID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// respond sends a direct response event to this client only.
func (c *Client) respond(eventName string, payload any) {
	frame, err := Frame(eventName, payload)
	if err != nil {
		c.log.Error("Response encode failed", "event", eventName, "error", err)
		return
	}
	c.sink.Push(frame)
}
