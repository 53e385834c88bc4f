package test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BufferSize      int           `envconfig:"TEST_BUFFER_SIZE" default:"64"`
	PersistTimeout  time.Duration `envconfig:"TEST_PERSIST_TIMEOUT" default:"2s"`
	SinkTimeout     time.Duration `envconfig:"TEST_SINK_TIMEOUT" default:"2s"`
	RestartInterval time.Duration `envconfig:"TEST_RESTART_INTERVAL" default:"200ms"`
	WaitTimeout     time.Duration `envconfig:"TEST_WAIT_TIMEOUT" default:"5s"`
}

// recordingConn is an in-process connection recording every delivery.
type recordingConn struct {
	mu        sync.Mutex
	delivered []event.Outbound
}

func (c *recordingConn) Deliver(_ context.Context, e event.Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered = append(c.delivered, e)
	return nil
}

func (c *recordingConn) byKind(kind event.Kind) []event.Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []event.Outbound
	for _, e := range c.delivered {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)

	var config testConfig
	req.NoError(envconfig.Process("", &config))

	// Reduced value log size for testing (avoid gigabytes of preallocation)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	indexWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = indexWriter.Close() })

	log := slog.Default()
	messageRepository := repositories.NewMessageRepository(db, log, nil)
	searchRepository := repositories.NewSearchRepository(indexWriter, log, 10)

	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	engine, err := runtime.NewEngine(log, supervisor, messageRepository, runtime.EngineConfig{
		BufferSize:        config.BufferSize,
		PersistTimeout:    config.PersistTimeout,
		SinkTimeout:       config.SinkTimeout,
		HeartbeatInterval: time.Minute,
		CharReplacement:   '*',
	})
	req.NoError(err)

	timeline := projection.NewTimeline(50)
	engine.Add(sink.NewSearchSink(searchRepository, log), timeline)

	engine.Start(ctx)
	t.Cleanup(engine.Stop)

	chat := services.NewChatService(engine, messageRepository, searchRepository)

	// Given alice and bob connected and online
	alice := &recordingConn{}
	bob := &recordingConn{}
	chat.Connected(alice)
	chat.Connected(bob)
	chat.Online(ctx, "alice", alice)
	chat.Online(ctx, "bob", bob)

	// Then both were told who is online
	lists := bob.byKind(event.KindOnlineIDList)
	req.NotEmpty(lists)
	req.Equal([]string{"alice", "bob"}, lists[len(lists)-1].(event.OnlineIDList).IDs)

	// When both join their conversation channel
	chat.JoinChannel(alice, "alice", "bob")
	chat.JoinChannel(bob, "bob", "alice")

	// And alice sends a message
	sent, err := chat.Send(ctx, domain.DraftMessage{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "see you at the harbour",
	})
	req.NoError(err)

	// Then bob receives the channel copy and the direct notification,
	// both with the same message id
	received := bob.byKind(event.KindMessageReceived)
	req.Len(received, 1)
	notifications := bob.byKind(event.KindMessageNotification)
	req.Len(notifications, 1)
	req.Equal(sent.ID, received[0].(event.MessageReceived).Message.ID)
	req.Equal(sent.ID, notifications[0].(event.MessageNotification).Message.ID)

	// And the message is durable
	history, _, err := chat.History("bob", "alice", nil)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(sent.ID, history[0].ID)

	// And the sinks eventually catch up through the fanout
	req.Eventually(func() bool {
		return len(timeline.Recent(domain.NewChannelID("alice", "bob"))) == 1
	}, config.WaitTimeout, 20*time.Millisecond)

	req.Eventually(func() bool {
		hits, searchErr := chat.Search(ctx, "alice", "bob", "harbour")
		return searchErr == nil && len(hits) == 1
	}, config.WaitTimeout, 50*time.Millisecond)

	// When alice types, only bob sees it
	chat.Typing(ctx, domain.TypingSignal{SenderID: "alice", ReceiverID: "bob", IsTyping: true})
	req.Len(bob.byKind(event.KindTypingStatus), 1)
	req.Empty(alice.byKind(event.KindTypingStatus))

	// When bob disconnects, alice gets the shrunken online list
	chat.Disconnect(ctx, bob)
	lists = alice.byKind(event.KindOnlineIDList)
	req.Equal([]string{"alice"}, lists[len(lists)-1].(event.OnlineIDList).IDs)

	// Messages to the now-offline bob are stored but no longer notified
	before := len(bob.byKind(event.KindMessageNotification))
	_, err = chat.Send(ctx, domain.DraftMessage{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "are you still there?",
	})
	req.NoError(err)
	req.Len(bob.byKind(event.KindMessageNotification), before)

	history, _, err = chat.History("alice", "bob", nil)
	req.NoError(err)
	req.Len(history, 2)
}
