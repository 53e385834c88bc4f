package runtime

import (
	"sort"
	"sync"

	"chat-relay/contract"
)

// PresenceTable maps participant ids to their current live connection.
// It is the single source of truth for reachability.
//
// Invariant: at most one entry per participant (single active session model).
// A later SetOnline for the same id silently supersedes the former mapping;
// the stale connection is not force-closed.
//
// PresenceTable is safe for concurrent use by multiple goroutines.
type PresenceTable struct {
	mu     sync.RWMutex
	byID   map[string]contract.Connection
	byConn map[contract.Connection]string
}

func NewPresenceTable() *PresenceTable {
	return &PresenceTable{
		byID:   make(map[string]contract.Connection),
		byConn: make(map[contract.Connection]string),
	}
}

// SetOnline inserts or overwrites the entry for a participant and returns the
// full sorted set of online ids, ready for broadcast. It never fails.
// Broadcasting the list is the lifecycle controller's responsibility.
func (p *PresenceTable) SetOnline(participantID string, conn contract.Connection) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if previous, ok := p.byID[participantID]; ok {
		delete(p.byConn, previous)
	}
	p.byID[participantID] = conn
	p.byConn[conn] = participantID

	return p.onlineIDsLocked()
}

// Connection is a read-only reachability lookup.
// Absence means "not reachable", never an error.
func (p *PresenceTable) Connection(participantID string) (contract.Connection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conn, ok := p.byID[participantID]
	return conn, ok
}

// RemoveByConnection performs the reverse lookup and delete in one atomic
// step, used on disconnect. It returns the participant id that was removed,
// or false if the connection had never registered (e.g. disconnected before
// sending "come online").
func (p *PresenceTable) RemoveByConnection(conn contract.Connection) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	participantID, ok := p.byConn[conn]
	if !ok {
		return "", false
	}
	delete(p.byConn, conn)

	// Only drop the forward entry if it still points at this connection.
	// A re-registration from another connection must survive the stale close.
	if current, exists := p.byID[participantID]; exists && current == conn {
		delete(p.byID, participantID)
	}
	return participantID, true
}

// OnlineIDs returns the sorted set of currently online participant ids.
func (p *PresenceTable) OnlineIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.onlineIDsLocked()
}

func (p *PresenceTable) onlineIDsLocked() []string {
	ids := make([]string, 0, len(p.byID))
	for id := range p.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
