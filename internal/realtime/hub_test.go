package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingClient(userID, sessionID string) (*Client, *[]interface{}) {
	c := NewClient(nil, userID, sessionID)
	received := &[]interface{}{}
	c.SetSendHook(func(v interface{}) {
		*received = append(*received, v)
	})
	return c, received
}

func TestRoomBroadcast_ExcludesSender(t *testing.T) {
	room := NewRoom("s1")
	alice, gotAlice := recordingClient("alice", "s1")
	bob, gotBob := recordingClient("bob", "s1")
	room.Join(alice)
	room.Join(bob)

	room.Broadcast(alice, "hello")

	assert.Empty(t, *gotAlice)
	require.Len(t, *gotBob, 1)
	assert.Equal(t, "hello", (*gotBob)[0])
}

func TestRoomBroadcast_NilSenderReachesEveryone(t *testing.T) {
	room := NewRoom("s1")
	alice, gotAlice := recordingClient("alice", "s1")
	bob, gotBob := recordingClient("bob", "s1")
	room.Join(alice)
	room.Join(bob)

	room.Broadcast(nil, "ended")

	assert.Len(t, *gotAlice, 1)
	assert.Len(t, *gotBob, 1)
}

func TestHubGetOrCreate(t *testing.T) {
	hub := NewHub()

	room := hub.GetOrCreate("s1")
	again := hub.GetOrCreate("s1")
	assert.Same(t, room, again)

	got, ok := hub.Get("s1")
	assert.True(t, ok)
	assert.Same(t, room, got)

	_, ok = hub.Get("s2")
	assert.False(t, ok)
}

func TestHubLeave_FiresOnRoomEmpty(t *testing.T) {
	hub := NewHub()
	var emptied []string
	hub.OnRoomEmpty = func(sessionID string) {
		emptied = append(emptied, sessionID)
	}

	room := hub.GetOrCreate("s1")
	alice, _ := recordingClient("alice", "s1")
	bob, _ := recordingClient("bob", "s1")
	room.Join(alice)
	room.Join(bob)

	hub.Leave("s1", alice)
	assert.Empty(t, emptied)

	hub.Leave("s1", bob)
	assert.Equal(t, []string{"s1"}, emptied)

	// Room was torn down
	_, ok := hub.Get("s1")
	assert.False(t, ok)
}

func TestHubLeave_UnknownRoom(t *testing.T) {
	hub := NewHub()
	alice, _ := recordingClient("alice", "s1")

	// No panic, no callback
	hub.OnRoomEmpty = func(string) { t.Fatal("unexpected OnRoomEmpty") }
	hub.Leave("nope", alice)
}

func TestNotifyUser(t *testing.T) {
	hub := NewHub()
	alice, gotAlice := recordingClient("alice", "")
	hub.RegisterUser("alice", alice)

	hub.NotifyUser("alice", "match_found")
	hub.NotifyUser("bob", "dropped")

	require.Len(t, *gotAlice, 1)
	assert.Equal(t, "match_found", (*gotAlice)[0])
}

func TestUnregisterUser_OnlyRemovesSameClient(t *testing.T) {
	hub := NewHub()
	stale, gotStale := recordingClient("alice", "")
	fresh, gotFresh := recordingClient("alice", "")

	hub.RegisterUser("alice", stale)
	hub.RegisterUser("alice", fresh)

	// The stale connection's teardown must not evict the reconnect.
	hub.UnregisterUser("alice", stale)
	hub.NotifyUser("alice", "still-here")

	assert.Empty(t, *gotStale)
	require.Len(t, *gotFresh, 1)

	hub.UnregisterUser("alice", fresh)
	hub.NotifyUser("alice", "gone")
	assert.Len(t, *gotFresh, 1)
}

func TestBroadcastToSession(t *testing.T) {
	hub := NewHub()
	room := hub.GetOrCreate("s1")
	alice, _ := recordingClient("alice", "s1")
	bob, gotBob := recordingClient("bob", "s1")
	room.Join(alice)
	room.Join(bob)

	hub.BroadcastToSession("s1", alice, "code_updated")
	hub.BroadcastToSession("missing", nil, "dropped")

	require.Len(t, *gotBob, 1)
	assert.Equal(t, "code_updated", (*gotBob)[0])
}
