package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()

	alice, cleanupAlice := hub.Subscribe("alice")
	defer cleanupAlice()
	bob, cleanupBob := hub.Subscribe("bob")
	defer cleanupBob()

	hub.Publish("alice", Event{UserID: "alice", Event: "payroll_approved", Data: "2024-06"})

	select {
	case ev := <-alice:
		assert.Equal(t, "payroll_approved", ev.Event)
		assert.Equal(t, "2024-06", ev.Data)
	default:
		t.Fatal("expected event for alice")
	}

	select {
	case ev := <-bob:
		t.Fatalf("bob received unexpected event %v", ev)
	default:
	}
}

func TestHub_PublishToManySetsUserID(t *testing.T) {
	hub := NewHub()
	a, ca := hub.Subscribe("a")
	defer ca()
	b, cb := hub.Subscribe("b")
	defer cb()

	hub.PublishToMany([]string{"a", "b"}, Event{Event: "payroll_paid"})

	evA := <-a
	evB := <-b
	assert.Equal(t, "a", evA.UserID)
	assert.Equal(t, "b", evB.UserID)
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("u1")
	require.Equal(t, 1, hub.SubscriberCount("u1"))

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount("u1"))
	_, open := <-ch
	assert.False(t, open)

	// publishing after cleanup must not panic
	hub.Publish("u1", Event{Event: "payroll_paid"})
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("slow")
	defer cleanup()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish("slow", Event{Event: "payroll_generated"})
	}

	assert.Equal(t, int64(5), hub.Dropped())
}
