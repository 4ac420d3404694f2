package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetUserActive(t *testing.T) {
	tr := NewTracker()

	tr.SetUserActive("user1", "sched1")

	assert.Equal(t, 1, tr.ActiveCount("sched1"))
	assert.False(t, tr.AnyOtherActive("sched1", "user1"))

	tr.SetUserActive("user2", "sched1")
	assert.Equal(t, 2, tr.ActiveCount("sched1"))
	assert.True(t, tr.AnyOtherActive("sched1", "user1"))
	assert.True(t, tr.AnyOtherActive("sched1", "user2"))
}

func TestSetUserActive_EmptyIDs(t *testing.T) {
	tr := NewTracker()

	tr.SetUserActive("", "sched1")
	tr.SetUserActive("user1", "")

	assert.Equal(t, 0, tr.ActiveCount("sched1"))
}

func TestSetUserInactive(t *testing.T) {
	tr := NewTracker()

	tr.SetUserActive("user1", "sched1")
	tr.SetUserActive("user2", "sched1")
	tr.SetUserInactive("user1", "sched1")

	assert.Equal(t, 1, tr.ActiveCount("sched1"))
	assert.False(t, tr.AnyOtherActive("sched1", "user2"))
}

func TestSetUserInactive_UnknownSession(t *testing.T) {
	tr := NewTracker()

	// No-op on unknown identifiers
	tr.SetUserInactive("user1", "nope")
	assert.Equal(t, 0, tr.ActiveCount("nope"))
}

func TestClearUserPresence(t *testing.T) {
	tr := NewTracker()

	tr.SetUserActive("user1", "sched1")
	tr.SetUserActive("user1", "sched2")
	tr.SetUserActive("user2", "sched1")

	tr.ClearUserPresence("user1")

	assert.Equal(t, 1, tr.ActiveCount("sched1"))
	assert.Equal(t, 0, tr.ActiveCount("sched2"))
}

func TestTracker_ConcurrentMutation(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user%d", n)
			tr.SetUserActive(userID, "sched1")
			tr.AnyOtherActive("sched1", userID)
			tr.SetUserInactive(userID, "sched1")
			tr.ClearUserPresence(userID)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, tr.ActiveCount("sched1"))
}
