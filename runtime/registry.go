package runtime

import (
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
)

type Set map[contract.Connection]struct{}

// Registry owns live-connection bookkeeping for the transport layer:
// the global set of open connections and the membership group of each
// conversation channel. Channel ids themselves are derived in the domain
// package; the registry only stores who joined what.
type Registry struct {
	mu             sync.RWMutex
	connections    Set
	channelMembers map[domain.ChannelID]Set
}

func NewRegistry() *Registry {
	return &Registry{
		connections:    make(Set),
		channelMembers: make(map[domain.ChannelID]Set),
	}
}

// Register adds a freshly opened connection to the global set.
func (r *Registry) Register(conn contract.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[conn] = struct{}{}
}

// Unregister removes a closed connection from the global set and from every
// channel it had joined. It cleans up empty membership sets so the map does
// not grow with dead channels over time.
func (r *Registry) Unregister(conn contract.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.connections, conn)

	for channel, members := range r.channelMembers {
		delete(members, conn)
		if len(members) == 0 {
			delete(r.channelMembers, channel)
		}
	}
}

// Join adds a connection to the membership group of a channel.
// If the channel has no group yet, it is initialized on the fly.
func (r *Registry) Join(conn contract.Connection, channel domain.ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channelMembers[channel]; !ok {
		r.channelMembers[channel] = make(Set)
	}
	r.channelMembers[channel][conn] = struct{}{}
}

// ConnectionsForChannel retrieves every connection currently joined to a
// channel. Returns nil if the channel doesn't exist or has no members.
func (r *Registry) ConnectionsForChannel(channel domain.ChannelID) []contract.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.channelMembers[channel]
	if !ok {
		return nil
	}
	conns := make([]contract.Connection, 0, len(members))
	for conn := range members {
		conns = append(conns, conn)
	}
	return conns
}

// All returns every live connection, for global broadcasts.
func (r *Registry) All() []contract.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]contract.Connection, 0, len(r.connections))
	for conn := range r.connections {
		conns = append(conns, conn)
	}
	return conns
}
