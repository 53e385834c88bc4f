package runtime

import (
	"testing"

	"chat-relay/domain"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Join_One_Channel_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := &stubConn{name: "alice"}
	channel := domain.NewChannelID("alice", "bob")

	// Given no connection is registered
	req.Empty(registry.All())
	req.Nil(registry.ConnectionsForChannel(channel))

	// When a connection registers and joins a channel
	registry.Register(conn)
	registry.Join(conn, channel)

	// Then
	req.Len(registry.All(), 1)
	req.Len(registry.ConnectionsForChannel(channel), 1)
	req.Contains(registry.ConnectionsForChannel(channel), conn)
}

func TestRegistry_Join_One_Channel_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn1 := &stubConn{name: "alice"}
	conn2 := &stubConn{name: "bob"}
	channel := domain.NewChannelID("alice", "bob")

	// When both sides join the same channel
	registry.Register(conn1)
	registry.Register(conn2)
	registry.Join(conn1, channel)
	registry.Join(conn2, channel)

	// Then
	req.Len(registry.All(), 2)
	req.Len(registry.ConnectionsForChannel(channel), 2)
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := &stubConn{name: "alice"}
	channel := domain.NewChannelID("alice", "bob")

	// When the same connection joins twice
	registry.Join(conn, channel)
	registry.Join(conn, channel)

	// Then membership holds a single entry
	req.Len(registry.ConnectionsForChannel(channel), 1)
}

func TestRegistry_Unregister_Cleans_Channel_Membership(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := &stubConn{name: "alice"}
	channel := domain.NewChannelID("alice", "bob")

	// Given a connection joined to a channel
	registry.Register(conn)
	registry.Join(conn, channel)

	// When the connection unregisters
	registry.Unregister(conn)

	// Then no connection remains
	// And the channel's membership group is gone
	req.Empty(registry.All())
	req.Nil(registry.ConnectionsForChannel(channel))
}

func TestRegistry_Unregister_Keeps_Other_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn1 := &stubConn{name: "alice"}
	conn2 := &stubConn{name: "bob"}
	channel := domain.NewChannelID("alice", "bob")

	registry.Register(conn1)
	registry.Register(conn2)
	registry.Join(conn1, channel)
	registry.Join(conn2, channel)

	// When one side leaves
	registry.Unregister(conn1)

	// Then only the other member remains
	req.Len(registry.All(), 1)
	req.Len(registry.ConnectionsForChannel(channel), 1)
	req.Contains(registry.ConnectionsForChannel(channel), conn2)
}
