//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Append(message domain.Message) error
	QueryBetween(a, b string, cursor *string) ([]domain.Message, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// diskMessage is the storage representation of a message.
type diskMessage struct {
	ID            string    `json:"id"`
	Channel       string    `json:"channel"`
	SenderID      string    `json:"sender_id"`
	ReceiverID    string    `json:"receiver_id"`
	Content       string    `json:"content"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	At            time.Time `json:"at"`
}

// Append persists a message in BadgerDB.
// The key is formatted as "msg:{channel}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
//
// Appends for the same participant pair preserve submission order because the
// dispatcher stamps and stores synchronously before broadcasting.
func (m MessageRepository) Append(message domain.Message) error {
	channel := domain.NewChannelID(message.SenderID, message.ReceiverID)
	key := fmt.Sprintf("msg:%s:%019d:%s",
		channel,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromMessage(message, channel))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// QueryBetween retrieves the conversation between two participants using a
// prefix scan over the derived channel. Thanks to the padded timestamp in the
// key, messages are naturally sorted by time; the reverse iterator yields the
// most recent page first. It stops collecting once the configured
// limitMessages is reached and returns a cursor for the next page.
func (m MessageRepository) QueryBetween(a, b string, cursor *string) ([]domain.Message, *string, error) {
	var rawMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", domain.NewChannelID(a, b))
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible key, then walk backwards
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(rawMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				rawMessages = append(rawMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var messages []domain.Message
	for _, raw := range rawMessages {
		var dm diskMessage
		if err = json.Unmarshal(raw, &dm); err != nil {
			return nil, nil, err
		}
		message, err := toMessage(dm)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	if len(messages) == 0 {
		return nil, nil, nil
	}
	return messages, lo.ToPtr(lastKey), nil
}

func fromMessage(message domain.Message, channel domain.ChannelID) diskMessage {
	return diskMessage{
		ID:            message.ID.String(),
		Channel:       channel.String(),
		SenderID:      message.SenderID,
		ReceiverID:    message.ReceiverID,
		Content:       message.Content,
		AttachmentURL: message.AttachmentURL,
		At:            message.CreatedAt.UTC(),
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:            parsedID,
		SenderID:      dm.SenderID,
		ReceiverID:    dm.ReceiverID,
		Content:       dm.Content,
		AttachmentURL: dm.AttachmentURL,
		CreatedAt:     dm.At.UTC(),
	}, nil
}
