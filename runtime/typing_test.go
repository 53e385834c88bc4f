package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"

	"github.com/stretchr/testify/require"
)

func TestTypingRelay_ForwardsToReceiver(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	presence := NewPresenceTable()
	relay := NewTypingRelay(slog.Default(), presence, observability.NewMonitoringManager())

	// Given bob online
	bob := &stubConn{name: "bob"}
	presence.SetOnline("bob", bob)

	// When alice starts typing
	relay.Relay(ctx, domain.TypingSignal{SenderID: "alice", ReceiverID: "bob", IsTyping: true})

	// Then bob receives the status
	req.Len(bob.delivered, 1)
	status := bob.delivered[0].(event.TypingStatus)
	req.Equal("alice", status.SenderID)
	req.True(status.IsTyping)
}

func TestTypingRelay_OfflineReceiver_SignalLost(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	presence := NewPresenceTable()
	relay := NewTypingRelay(slog.Default(), presence, observability.NewMonitoringManager())

	// Given alice online but bob offline
	alice := &stubConn{name: "alice"}
	presence.SetOnline("alice", alice)

	// When alice types to bob
	relay.Relay(ctx, domain.TypingSignal{SenderID: "alice", ReceiverID: "bob", IsTyping: true})

	// Then the signal is silently dropped, nobody is notified
	req.Empty(alice.delivered)
}

func TestTypingRelay_DeliveryFailure_IsDropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	presence := NewPresenceTable()
	relay := NewTypingRelay(slog.Default(), presence, observability.NewMonitoringManager())

	// Given bob's connection rejecting deliveries
	bob := &stubConn{name: "bob", failWith: fmt.Errorf("buffer full")}
	presence.SetOnline("bob", bob)

	// When alice types, the relay absorbs the failure
	relay.Relay(ctx, domain.TypingSignal{SenderID: "alice", ReceiverID: "bob", IsTyping: false})
	req.Empty(bob.delivered)
}
