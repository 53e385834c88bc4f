package runtime

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
)

// TypingRelay forwards typing signals to the receiver's direct connection
// only. Signals are never persisted, never queued: an unreachable receiver
// simply loses the signal.
type TypingRelay struct {
	log        *slog.Logger
	presence   contract.IPresenceTable
	monitoring *observability.MonitoringManager
}

func NewTypingRelay(log *slog.Logger, presence contract.IPresenceTable,
	monitoring *observability.MonitoringManager) *TypingRelay {
	return &TypingRelay{log: log, presence: presence, monitoring: monitoring}
}

// Relay forwards the signal if the receiver is reachable. Absence from the
// presence table is a normal outcome, not an error.
func (t *TypingRelay) Relay(ctx context.Context, signal domain.TypingSignal) {
	conn, ok := t.presence.Connection(signal.ReceiverID)
	if !ok {
		return
	}

	outbound := event.TypingStatus{SenderID: signal.SenderID, IsTyping: signal.IsTyping}
	if err := conn.Deliver(ctx, outbound); err != nil {
		t.log.Debug("Typing relay dropped", "receiver", signal.ReceiverID, "error", err)
		return
	}
	t.monitoring.IncrTypingRelayed()
}
