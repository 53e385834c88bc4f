package projection

import (
	"context"
	"sync"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// Timeline keeps an in-memory tail of recent messages per channel,
// rebuilt from dispatched events. It is a convenience projection for
// debugging and the viewer, not a source of truth.
type Timeline struct {
	mu       sync.RWMutex
	capacity int
	recent   map[domain.ChannelID][]domain.Message
}

func NewTimeline(capacity int) *Timeline {
	return &Timeline{
		capacity: capacity,
		recent:   make(map[domain.ChannelID][]domain.Message),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessageDispatched)
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	channel := evt.Channel()
	messages := append(t.recent[channel], domain.Message{
		ID:            evt.ID,
		SenderID:      evt.SenderID,
		ReceiverID:    evt.ReceiverID,
		Content:       evt.Content,
		AttachmentURL: evt.AttachmentURL,
		CreatedAt:     evt.At,
	})
	if len(messages) > t.capacity {
		messages = messages[len(messages)-t.capacity:]
	}
	t.recent[channel] = messages
	return nil
}

// Recent returns the buffered tail for a channel, newest last.
func (t *Timeline) Recent(channel domain.ChannelID) []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.Message(nil), t.recent[channel]...)
}
