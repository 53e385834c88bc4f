package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestSearchRepository(t *testing.T) SearchRepository {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewSearchRepository(writer, slog.Default(), 10)
}

func TestSearchRepository_IndexAndSearch(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newTestSearchRepository(t)
	at := time.Now().UTC().Truncate(time.Millisecond)

	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "let's meet at the harbour tomorrow",
		CreatedAt:  at,
	}
	req.NoError(repository.IndexMessage(message, "en"))

	// When searching the conversation for a word from the message
	hits, err := repository.SearchMessages(ctx, "alice", "bob", "harbour")
	req.NoError(err)

	req.Len(hits, 1)
	req.Equal(message.ID.String(), hits[0].MessageID)
	req.Equal("alice", hits[0].SenderID)
	req.Equal(message.Content, hits[0].Content)
	req.Equal("en", hits[0].Language)
	req.Equal(at, hits[0].CreatedAt)
}

func TestSearchRepository_ScopedToChannel(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newTestSearchRepository(t)
	at := time.Now().UTC()

	req.NoError(repository.IndexMessage(domain.Message{
		ID: uuid.New(), SenderID: "alice", ReceiverID: "bob",
		Content: "secret harbour plan", CreatedAt: at,
	}, "en"))
	req.NoError(repository.IndexMessage(domain.Message{
		ID: uuid.New(), SenderID: "alice", ReceiverID: "clara",
		Content: "another harbour story", CreatedAt: at,
	}, "en"))

	// A search between alice and bob never leaks clara's conversation
	hits, err := repository.SearchMessages(ctx, "bob", "alice", "harbour")
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("secret harbour plan", hits[0].Content)
}

func TestSearchRepository_NoMatch(t *testing.T) {
	req := require.New(t)
	repository := newTestSearchRepository(t)

	hits, err := repository.SearchMessages(context.Background(), "alice", "bob", "nothing")
	req.NoError(err)
	req.Empty(hits)
}
