package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"connectrix/auth"
	"connectrix/contract"
	"connectrix/domain"
	"connectrix/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server upgrades HTTP requests and dispatches inbound envelopes onto the
// relay. Handler errors never crash the connection loop: failures degrade
// to response events (authenticated{success:false}, messageError) or logs.
type Server struct {
	log                  *slog.Logger
	relay                contract.IRelay
	upgrader             websocket.Upgrader
	validate             *validator.Validate
	connectionBufferSize int
}

func NewServer(log *slog.Logger, relay contract.IRelay, connectionBufferSize int) *Server {
	return &Server{
		log:   log,
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		validate:             validator.New(),
		connectionBufferSize: connectionBufferSize,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newClient(conn, s, uuid.NewString(), s.log)
	go client.writePump()
	client.readPump()
}

func (s *Server) dispatch(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warn("Malformed envelope", "connection_id", c.connectionID, "error", err)
		return
	}

	if env.Event == EventAuthenticate {
		s.handleAuthenticate(c, env.Payload)
		return
	}
	if c.session == nil {
		s.log.Warn("Event before authentication, dropping",
			"event", env.Event, "connection_id", c.connectionID, "error", errors.ErrNotAuthenticated)
		return
	}

	switch env.Event {
	case EventJoinChat:
		s.handleJoinChat(c, env.Payload)
	case EventSendMessage:
		s.handleSendMessage(c, env.Payload)
	case EventMarkAsRead:
		s.handleMarkAsRead(c, env.Payload)
	case EventTyping:
		s.handleTyping(c, env.Payload)
	default:
		s.log.Debug("Unknown event", "event", env.Event, "connection_id", c.connectionID)
	}
}

// handleAuthenticate degrades every failure to {success:false} so the
// client can show a retry UI instead of losing the connection.
func (s *Server) handleAuthenticate(c *Client, raw json.RawMessage) {
	var p AuthenticatePayload
	if err := s.decode(raw, &p); err != nil {
		c.respond(EventAuthenticated, AuthenticatedPayload{Success: false, Error: "malformed payload"})
		return
	}

	claims, err := auth.ValidateToken(p.Token)
	if err != nil {
		c.respond(EventAuthenticated, AuthenticatedPayload{Success: false, Error: errors.ErrInvalidToken.Error()})
		return
	}
	// The token subject is the identity; a payload claiming another user
	// is rejected outright.
	if claims.UserID != p.UserID {
		c.respond(EventAuthenticated, AuthenticatedPayload{Success: false, Error: "token subject mismatch"})
		return
	}

	session := s.relay.OpenSession(c.connectionID, claims.UserID, c.sink)
	c.session = &session
	s.log.Info("Session opened", "user_id", claims.UserID, "connection_id", c.connectionID)
	c.respond(EventAuthenticated, AuthenticatedPayload{Success: true})
}

func (s *Server) handleJoinChat(c *Client, raw json.RawMessage) {
	var p JoinChatPayload
	if err := s.decode(raw, &p); err != nil {
		s.log.Warn("Invalid joinChat payload", "connection_id", c.connectionID, "error", err)
		return
	}
	// Silent join, per protocol: no response event.
	s.relay.JoinChat(*c.session, p.ChatID)
}

func (s *Server) handleSendMessage(c *Client, raw json.RawMessage) {
	var p SendMessagePayload
	if err := s.decode(raw, &p); err != nil {
		c.respond(EventMessageError, MessageErrorPayload{Error: "malformed payload", Tag: p.Tag})
		return
	}

	message, err := s.relay.SendMessage(context.Background(), *c.session, domain.SendMessageCommand{
		ConversationID: p.ChatID,
		SenderID:       p.SenderID,
		ReceiverID:     p.ReceiverID,
		Body:           p.Message,
		Kind:           domain.MessageKind(p.MessageType),
		Tag:            p.Tag,
	})
	if err != nil {
		s.log.Warn("Send rejected", "connection_id", c.connectionID, "error", err)
		c.respond(EventMessageError, MessageErrorPayload{Error: err.Error(), Tag: p.Tag})
		return
	}

	// Direct acknowledgement to the sender; the room broadcast excludes it.
	c.respond(EventNewMessage, NewMessagePayload{Message: message, Tag: p.Tag})
}

func (s *Server) handleMarkAsRead(c *Client, raw json.RawMessage) {
	var p MarkAsReadPayload
	if err := s.decode(raw, &p); err != nil {
		s.log.Warn("Invalid markAsRead payload", "connection_id", c.connectionID, "error", err)
		return
	}

	err := s.relay.MarkAsRead(context.Background(), *c.session, domain.MarkAsReadCommand{
		ConversationID: p.ChatID,
		MessageIDs:     p.MessageIDs,
	})
	if err != nil {
		// No error event defined for markAsRead; the read model catches up
		// on the next live-query refresh.
		s.log.Warn("markAsRead rejected", "connection_id", c.connectionID, "error", err)
	}
}

func (s *Server) handleTyping(c *Client, raw json.RawMessage) {
	var p TypingPayload
	if err := s.decode(raw, &p); err != nil {
		return
	}
	s.relay.Typing(*c.session, domain.TypingCommand{
		ConversationID: p.ChatID,
		IsTyping:       p.IsTyping,
	})
}

func (s *Server) decode(raw json.RawMessage, payload any) error {
	if err := json.Unmarshal(raw, payload); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return s.validate.Struct(payload)
}
