package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain/event"
)

// ConnectionState is the lifecycle state of a live connection.
type ConnectionState string

const (
	// StateConnecting means the transport handshake completed but no
	// presence was registered yet.
	StateConnecting ConnectionState = "connecting"
	// StateOnline means the connection emitted "come online" with its
	// participant id.
	StateOnline ConnectionState = "online"
	// StateDisconnected is terminal.
	StateDisconnected ConnectionState = "disconnected"
)

// LifecycleController drives the per-connection state machine
// connecting -> online -> disconnected. Transitions are one-directional;
// a connection that never reached online produces no presence side effects
// on disconnect.
type LifecycleController struct {
	log      *slog.Logger
	presence contract.IPresenceTable
	registry contract.IRegistry
	events   chan<- event.DomainEvent

	mu     sync.Mutex
	states map[contract.Connection]ConnectionState
}

func NewLifecycleController(log *slog.Logger, presence contract.IPresenceTable,
	registry contract.IRegistry, events chan<- event.DomainEvent) *LifecycleController {
	return &LifecycleController{
		log:      log,
		presence: presence,
		registry: registry,
		events:   events,
		states:   make(map[contract.Connection]ConnectionState),
	}
}

// Connected registers a freshly opened connection in the connecting state.
func (l *LifecycleController) Connected(conn contract.Connection) {
	l.mu.Lock()
	l.states[conn] = StateConnecting
	l.mu.Unlock()

	l.registry.Register(conn)
}

// Online registers presence for the participant on this connection and
// broadcasts the updated online-id list to every live connection.
// A repeated come-online on the same connection re-registers (last write
// wins); a come-online after disconnect is ignored.
func (l *LifecycleController) Online(ctx context.Context, participantID string, conn contract.Connection) {
	l.mu.Lock()
	state, known := l.states[conn]
	if !known || state == StateDisconnected {
		l.mu.Unlock()
		l.log.Warn("Come-online on a dead connection ignored", "participant", participantID)
		return
	}
	l.states[conn] = StateOnline
	l.mu.Unlock()

	onlineIDs := l.presence.SetOnline(participantID, conn)
	l.broadcastOnlineIDs(ctx, onlineIDs)
	l.emitPresence(participantID, true, onlineIDs)
}

// Disconnect drives the terminal transition: transport cleanup, atomic
// presence removal, and a presence broadcast only if something was removed.
func (l *LifecycleController) Disconnect(ctx context.Context, conn contract.Connection) {
	l.mu.Lock()
	if _, known := l.states[conn]; !known {
		// Already disconnected, or never connected at all.
		l.mu.Unlock()
		return
	}
	delete(l.states, conn)
	l.mu.Unlock()

	l.registry.Unregister(conn)

	participantID, removed := l.presence.RemoveByConnection(conn)
	if !removed {
		// Never reached online: nothing beyond transport cleanup.
		return
	}

	onlineIDs := l.presence.OnlineIDs()
	l.broadcastOnlineIDs(ctx, onlineIDs)
	l.emitPresence(participantID, false, onlineIDs)
}

func (l *LifecycleController) broadcastOnlineIDs(ctx context.Context, onlineIDs []string) {
	outbound := event.OnlineIDList{IDs: onlineIDs}
	for _, conn := range l.registry.All() {
		if err := conn.Deliver(ctx, outbound); err != nil {
			l.log.Debug("Online list delivery dropped", "error", err)
		}
	}
}

func (l *LifecycleController) emitPresence(participantID string, online bool, onlineIDs []string) {
	evt := event.PresenceChanged{
		ParticipantID: participantID,
		Online:        online,
		OnlineIDs:     onlineIDs,
		At:            time.Now().UTC(),
	}
	select {
	case l.events <- evt:
	default:
		l.log.Debug("Presence event lost, fanout channel full")
	}
}
