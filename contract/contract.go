//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Connection is a live transport connection handle. The transport layer owns
// it exclusively; the engine only references it and never closes it.
// Deliver must not block the caller beyond the connection's own buffering.
type Connection interface {
	Deliver(ctx context.Context, e event.Outbound) error
}

// EventSink consumes domain events fanned out by the engine
// (search index, projections, telemetry). Best-effort, no ordering guarantee.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IPresenceTable is the single source of truth for "is X reachable, and where".
type IPresenceTable interface {
	SetOnline(participantID string, conn Connection) []string
	Connection(participantID string) (Connection, bool)
	RemoveByConnection(conn Connection) (string, bool)
	OnlineIDs() []string
}

// IRegistry owns live-connection bookkeeping: the global connection set and
// per-channel membership groups used for broadcast delivery.
type IRegistry interface {
	Register(conn Connection)
	Unregister(conn Connection)
	Join(conn Connection, channel domain.ChannelID)
	ConnectionsForChannel(channel domain.ChannelID) []Connection
	All() []Connection
}
