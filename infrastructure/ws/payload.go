package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// Envelope is the wire frame for both directions: an event name plus its
// event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	eventComeOnline  = "come-online"
	eventJoinChannel = "join-channel"
	eventSendMessage = "send-message"
	eventTyping      = "typing"
)

type comeOnlinePayload struct {
	ParticipantID string `json:"participantId"`
}

type joinChannelPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

type sendMessagePayload struct {
	SenderID      string `json:"senderId"`
	ReceiverID    string `json:"receiverId"`
	Content       string `json:"content"`
	AttachmentURL string `json:"attachmentUrl,omitempty"`
}

type typingPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

type messagePayload struct {
	ID            string    `json:"id"`
	SenderID      string    `json:"senderId"`
	ReceiverID    string    `json:"receiverId"`
	Content       string    `json:"content"`
	AttachmentURL string    `json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type onlineIDListPayload struct {
	IDs []string `json:"ids"`
}

type typingStatusPayload struct {
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

type errorPayload struct {
	Code string `json:"code"`
}

func toMessagePayload(m domain.Message) messagePayload {
	return messagePayload{
		ID:            m.ID.String(),
		SenderID:      m.SenderID,
		ReceiverID:    m.ReceiverID,
		Content:       m.Content,
		AttachmentURL: m.AttachmentURL,
		CreatedAt:     m.CreatedAt,
	}
}

// encodeOutbound maps an engine event to its wire envelope.
func encodeOutbound(e event.Outbound) (Envelope, error) {
	var payload any
	switch evt := e.(type) {
	case event.OnlineIDList:
		payload = onlineIDListPayload{IDs: evt.IDs}
	case event.MessageReceived:
		payload = toMessagePayload(evt.Message)
	case event.MessageNotification:
		payload = toMessagePayload(evt.Message)
	case event.TypingStatus:
		payload = typingStatusPayload{SenderID: evt.SenderID, IsTyping: evt.IsTyping}
	case event.DispatchError:
		payload = errorPayload{Code: evt.Code}
	default:
		return Envelope{}, fmt.Errorf("unknown outbound event %T", e)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: string(e.Kind()), Data: data}, nil
}
