// Package ws is the realtime transport: it upgrades HTTP requests to
// websockets, decodes inbound event envelopes, and feeds them to the chat
// service. One read loop per connection drives the whole lifecycle.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chat-relay/domain"
	"chat-relay/domain/event"
	apperrors "chat-relay/errors"
	"chat-relay/services"

	"github.com/gorilla/websocket"
)

type Server struct {
	log        *slog.Logger
	chat       services.IChatService
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewServer(log *slog.Logger, chat services.IChatService, bufferSize int) *Server {
	return &Server{
		log:  log,
		chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Socket actions are not authorized per the single-process
			// deployment model; the HTTP surface carries the JWT checks.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := newConn(s.log, socket, s.bufferSize)
	s.chat.Connected(conn)
	go conn.writePump()

	s.readLoop(r.Context(), socket, conn)
}

// readLoop blocks until the client disconnects or a read error occurs.
// The deferred disconnect is the transport-originated "disconnect" event:
// it runs exactly once per connection.
func (s *Server) readLoop(ctx context.Context, socket *websocket.Conn, conn *Conn) {
	defer func() {
		conn.close()
		s.chat.Disconnect(ctx, conn)
	}()

	for {
		_, data, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Socket closed unexpectedly", "error", err)
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			s.log.Debug("Malformed envelope ignored", "error", err)
			continue
		}
		s.handle(ctx, conn, envelope)
	}
}

func (s *Server) handle(ctx context.Context, conn *Conn, envelope Envelope) {
	switch envelope.Event {
	case eventComeOnline:
		var p comeOnlinePayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil || p.ParticipantID == "" {
			s.log.Debug("Invalid come-online payload ignored")
			return
		}
		s.chat.Online(ctx, p.ParticipantID, conn)

	case eventJoinChannel:
		var p joinChannelPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			s.log.Debug("Invalid join-channel payload ignored")
			return
		}
		s.chat.JoinChannel(conn, p.SenderID, p.ReceiverID)

	case eventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			s.deliverError(ctx, conn, "invalid-message")
			return
		}
		draft := domain.DraftMessage{
			SenderID:      p.SenderID,
			ReceiverID:    p.ReceiverID,
			Content:       p.Content,
			AttachmentURL: p.AttachmentURL,
		}
		if _, err := s.chat.Send(ctx, draft); err != nil {
			s.deliverError(ctx, conn, dispatchErrorCode(err))
		}

	case eventTyping:
		var p typingPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			s.log.Debug("Invalid typing payload ignored")
			return
		}
		s.chat.Typing(ctx, domain.TypingSignal{
			SenderID:   p.SenderID,
			ReceiverID: p.ReceiverID,
			IsTyping:   p.IsTyping,
		})

	default:
		s.log.Debug("Unknown inbound event ignored", "event", envelope.Event)
	}
}

// deliverError reports a dispatch failure to the originating connection only.
func (s *Server) deliverError(ctx context.Context, conn *Conn, code string) {
	if err := conn.Deliver(ctx, event.DispatchError{Code: code}); err != nil {
		s.log.Debug("Error delivery dropped", "code", code, "error", err)
	}
}

func dispatchErrorCode(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidMessage):
		return "invalid-message"
	case errors.Is(err, apperrors.ErrPersistence):
		return "persistence-failure"
	default:
		return "internal"
	}
}
