package event

import (
	"time"

	"chat-relay/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything the engine fans out to permanent sinks
// (search index, projections, telemetry). Delivery is best-effort.
type DomainEvent interface {
	Channel() domain.ChannelID
}

// MessageDispatched is emitted after a message was persisted and broadcast.
type MessageDispatched struct {
	ID            uuid.UUID
	SenderID      string
	ReceiverID    string
	Content       string
	AttachmentURL string
	Language      string // ISO 639-1 code detected at moderation time, may be empty
	CensoredWords []string
	At            time.Time
}

func (m MessageDispatched) Channel() domain.ChannelID {
	return domain.NewChannelID(m.SenderID, m.ReceiverID)
}

// PresenceChanged is emitted when a participant comes online or drops off.
type PresenceChanged struct {
	ParticipantID string
	Online        bool
	OnlineIDs     []string
	At            time.Time
}

// Channel implements DomainEvent. Presence is global, not tied to one
// conversation, so the channel is empty.
func (p PresenceChanged) Channel() domain.ChannelID {
	return ""
}
