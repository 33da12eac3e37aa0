package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e := <-sub.C():
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestHub_DeliversToJoinedTopics(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe()
	defer sub.Close()

	topic := StudentTopic(uuid.New())
	sub.Join(topic)

	e, err := NewEvent(topic, TypeRequestReceived, map[string]string{"id": "r1"})
	require.NoError(t, err)
	require.NoError(t, hub.Publish(context.Background(), e))

	got := receive(t, sub)
	assert.Equal(t, TypeRequestReceived, got.Type)
	assert.JSONEq(t, `{"id":"r1"}`, string(got.Payload))
}

func TestHub_IgnoresOtherTopics(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe()
	defer sub.Close()
	sub.Join("team:a")

	e, err := NewEvent("team:b", TypeMessageCreated, nil)
	require.NoError(t, err)
	hub.Deliver(e)

	select {
	case got := <-sub.C():
		t.Fatalf("unexpected event %+v", got)
	default:
	}
}

func TestHub_LeaveAndClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe()
	sub.Join("team:a")
	sub.Join("team:b")
	assert.Equal(t, 1, hub.Subscribers("team:a"))

	sub.Leave("team:a")
	assert.Equal(t, 0, hub.Subscribers("team:a"))
	assert.ElementsMatch(t, []string{"team:b"}, sub.Topics())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Subscribers("team:b"))

	_, open := <-sub.C()
	assert.False(t, open)

	// joining after close is a no-op
	sub.Join("team:c")
	assert.Equal(t, 0, hub.Subscribers("team:c"))
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe()
	defer sub.Close()
	sub.Join("team:a")

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriptionBuffer*2; i++ {
			e, _ := NewEvent("team:a", TypeMessageCreated, i)
			hub.Deliver(e)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscription")
	}
	assert.Len(t, sub.ch, subscriptionBuffer)
}
