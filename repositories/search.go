//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_repository.go -package=mocks
package repositories

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/domain"

	"github.com/blugelabs/bluge"
)

type ISearchRepository interface {
	IndexMessage(message domain.Message, language string) error
	SearchMessages(ctx context.Context, a, b, query string) ([]SearchHit, error)
}

// SearchHit is one full-text match in a conversation's history.
type SearchHit struct {
	MessageID string
	SenderID  string
	Content   string
	Language  string
	CreatedAt time.Time
}

// SearchRepository maintains a bluge full-text index over dispatched
// messages. Indexing is fed asynchronously by the search sink; a missed
// message degrades search results, never message delivery.
type SearchRepository struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

func NewSearchRepository(writer *bluge.Writer, log *slog.Logger, limit int) SearchRepository {
	return SearchRepository{writer: writer, log: log, limit: limit}
}

// IndexMessage upserts one message document keyed by its uuid. The language
// tag detected at dispatch time is indexed as a keyword so results can be
// filtered or faceted by language later.
func (s SearchRepository) IndexMessage(message domain.Message, language string) error {
	channel := domain.NewChannelID(message.SenderID, message.ReceiverID)

	doc := bluge.NewDocument(message.ID.String())
	doc.AddField(bluge.NewKeywordField("channel", channel.String()))
	doc.AddField(bluge.NewKeywordField("sender", message.SenderID).StoreValue())
	doc.AddField(bluge.NewKeywordField("language", language).StoreValue())
	doc.AddField(bluge.NewTextField("content", message.Content).StoreValue())
	doc.AddField(bluge.NewStoredOnlyField("created_at",
		[]byte(message.CreatedAt.UTC().Format(time.RFC3339Nano))))

	return s.writer.Update(doc.ID(), doc)
}

// SearchMessages runs a full-text query scoped to the conversation between
// two participants and returns the top matches.
func (s SearchRepository) SearchMessages(ctx context.Context, a, b, query string) ([]SearchHit, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	channel := domain.NewChannelID(a, b)

	q := bluge.NewBooleanQuery()
	q.AddMust(bluge.NewTermQuery(channel.String()).SetField("channel"))
	q.AddMust(bluge.NewMatchQuery(query).SetField("content"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(s.limit, q))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "language":
				hit.Language = string(value)
			case "content":
				hit.Content = string(value)
			case "created_at":
				if t, parseErr := time.Parse(time.RFC3339Nano, string(value)); parseErr == nil {
					hit.CreatedAt = t
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}
