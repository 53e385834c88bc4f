package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"

	"github.com/abadojack/whatlanggo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Dispatcher orchestrates a message send: validate, sanitize, stamp, persist,
// broadcast to the channel, then direct-notify the receiver if reachable.
//
// Both deliveries may target the same connection; this is intentional
// (channel delivery = message content, direct delivery = notification badge)
// and consumers must tolerate duplication by message id.
type Dispatcher struct {
	log            *slog.Logger
	presence       contract.IPresenceTable
	registry       contract.IRegistry
	repository     repositories.IMessageRepository
	moderator      *moderation.Moderator
	monitoring     *observability.MonitoringManager
	events         chan<- event.DomainEvent
	persistTimeout time.Duration
}

func NewDispatcher(log *slog.Logger, presence contract.IPresenceTable,
	registry contract.IRegistry, repository repositories.IMessageRepository,
	moderator *moderation.Moderator, monitoring *observability.MonitoringManager,
	events chan<- event.DomainEvent, persistTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:            log,
		presence:       presence,
		registry:       registry,
		repository:     repository,
		moderator:      moderator,
		monitoring:     monitoring,
		events:         events,
		persistTimeout: persistTimeout,
	}
}

// Send processes one message sending intent. A persistence failure suppresses
/// the broadcast: a message is never delivered without a durable record.
// Failed deliveries to individual connections are dropped, never retried.
func (d *Dispatcher) Send(ctx context.Context, draft domain.DraftMessage) (domain.Message, error) {
	if err := validate.Struct(draft); err != nil {
		d.monitoring.IncrRejectedMessages()
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}

	// Language detection runs on the original text, censoring may strip the
	// very words that identify the language.
	language := whatlanggo.Detect(draft.Content).Lang.Iso6391()
	sanitized, foundWords := d.moderator.Censor(draft.Content)

	message := domain.Message{
		ID:            uuid.New(),
		SenderID:      draft.SenderID,
		ReceiverID:    draft.ReceiverID,
		Content:       sanitized,
		AttachmentURL: draft.AttachmentURL,
		CreatedAt:     time.Now().UTC(),
	}

	if err := d.persist(ctx, message); err != nil {
		d.monitoring.IncrPersistenceFailures()
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	channel := domain.NewChannelID(message.SenderID, message.ReceiverID)
	for _, conn := range d.registry.ConnectionsForChannel(channel) {
		if err := conn.Deliver(ctx, event.MessageReceived{Message: message}); err != nil {
			d.monitoring.IncrDeliveryDrops()
			d.log.Debug("Channel delivery dropped", "channel", channel, "error", err)
		}
	}

	if conn, ok := d.presence.Connection(message.ReceiverID); ok {
		if err := conn.Deliver(ctx, event.MessageNotification{Message: message}); err != nil {
			d.monitoring.IncrDeliveryDrops()
			d.log.Debug("Notification delivery dropped", "receiver", message.ReceiverID, "error", err)
		} else {
			d.monitoring.IncrNotificationsDelivered()
		}
	}

	d.monitoring.IncrMessagesDispatched()
	d.log.Info("Message dispatched",
		"channel", channel,
		"language", language,
		"censored", len(foundWords))
	d.emit(message, language, foundWords)

	return message, nil
}

// persist bounds the repository append with a timeout so a slow store
// surfaces as a dispatch failure instead of hanging the connection's loop.
func (d *Dispatcher) persist(ctx context.Context, message domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.persistTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.repository.Append(message)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) emit(message domain.Message, language string, foundWords []string) {
	evt := event.MessageDispatched{
		ID:            message.ID,
		SenderID:      message.SenderID,
		ReceiverID:    message.ReceiverID,
		Content:       message.Content,
		AttachmentURL: message.AttachmentURL,
		Language:      language,
		CensoredWords: foundWords,
		At:            message.CreatedAt,
	}
	select {
	case d.events <- evt:
	default:
		d.log.Debug("Domain event lost, fanout channel full")
	}
}
