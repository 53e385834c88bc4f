package projection

import (
	"context"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func dispatched(sender, receiver, content string, at time.Time) event.MessageDispatched {
	return event.MessageDispatched{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		At:         at,
	}
}

func TestTimeline_Consume_MessageDispatched(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(10)
	ctx := context.Background()
	at := time.Now().UTC()

	req.NoError(timeline.Consume(ctx, dispatched("alice", "bob", "Hello Bob", at)))
	req.NoError(timeline.Consume(ctx, dispatched("bob", "alice", "Hi Alice", at.Add(time.Second))))

	// Both directions accumulate under the same channel, newest last
	recent := timeline.Recent(domain.NewChannelID("alice", "bob"))
	req.Len(recent, 2)
	req.Equal("alice", recent[0].SenderID)
	req.Equal("bob", recent[1].SenderID)
}

func TestTimeline_CapacityTrimsOldest(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(2)
	ctx := context.Background()
	at := time.Now().UTC()

	req.NoError(timeline.Consume(ctx, dispatched("alice", "bob", "first", at)))
	req.NoError(timeline.Consume(ctx, dispatched("alice", "bob", "second", at.Add(time.Second))))
	req.NoError(timeline.Consume(ctx, dispatched("alice", "bob", "third", at.Add(2*time.Second))))

	recent := timeline.Recent(domain.NewChannelID("alice", "bob"))
	req.Len(recent, 2)
	req.Equal("second", recent[0].Content)
	req.Equal("third", recent[1].Content)
}

func TestTimeline_IgnoresOtherEvents(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(10)

	req.NoError(timeline.Consume(context.Background(),
		event.PresenceChanged{ParticipantID: "alice", Online: true}))
	req.Empty(timeline.Recent(domain.NewChannelID("alice", "bob")))
}
