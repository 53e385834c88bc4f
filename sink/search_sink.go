package sink

import (
	"context"
	"fmt"
	"log/slog"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/repositories"
)

// SearchSink feeds dispatched messages into the full-text index.
// Indexing lag or failure degrades search results only, never delivery.
type SearchSink struct {
	repository repositories.ISearchRepository
	log        *slog.Logger
}

func NewSearchSink(repository repositories.ISearchRepository, log *slog.Logger) SearchSink {
	return SearchSink{repository: repository, log: log}
}

func (s SearchSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageDispatched:
		return s.repository.IndexMessage(toMessage(evt), evt.Language)
	default:
		s.log.Debug(fmt.Sprintf("Not an indexable event : %v", evt))
		return nil
	}
}

func toMessage(evt event.MessageDispatched) domain.Message {
	return domain.Message{
		ID:            evt.ID,
		SenderID:      evt.SenderID,
		ReceiverID:    evt.ReceiverID,
		Content:       evt.Content,
		AttachmentURL: evt.AttachmentURL,
		CreatedAt:     evt.At,
	}
}
