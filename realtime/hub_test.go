package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.C:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case event := <-sub.C:
		t.Fatalf("unexpected event %q", event.Name)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPublishReachesOnlyTopicMembers(t *testing.T) {
	hub := NewHub()
	member := hub.Subscribe(OrderTopic(5))
	outsider := hub.Subscribe(OrderTopic(6))
	defer hub.Unsubscribe(member.ID)
	defer hub.Unsubscribe(outsider.ID)

	hub.Publish(OrderTopic(5), Event{Name: EventOrderStatusUpdate, Data: "preparing"})

	event := receive(t, member)
	assert.Equal(t, EventOrderStatusUpdate, event.Name)
	assertNoEvent(t, outsider)
}

func TestBroadcastReachesEveryone(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(TopicPublicOrders)
	b := hub.Subscribe() // no topics at all
	defer hub.Unsubscribe(a.ID)
	defer hub.Unsubscribe(b.ID)

	hub.Broadcast(Event{Name: EventNewOrder})

	assert.Equal(t, EventNewOrder, receive(t, a).Name)
	assert.Equal(t, EventNewOrder, receive(t, b).Name)
}

func TestJoinAndLeave(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub.ID)

	hub.Publish(TopicPublicOrders, Event{Name: EventPublicOrderUpdate})
	assertNoEvent(t, sub)

	assert.True(t, hub.Join(sub.ID, TopicPublicOrders))
	hub.Publish(TopicPublicOrders, Event{Name: EventPublicOrderUpdate})
	assert.Equal(t, EventPublicOrderUpdate, receive(t, sub).Name)

	assert.True(t, hub.Leave(sub.ID, TopicPublicOrders))
	hub.Publish(TopicPublicOrders, Event{Name: EventPublicOrderUpdate})
	assertNoEvent(t, sub)
}

func TestJoinAndLeaveUnknownSubscription(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.Join("no-such-client", TopicPublicOrders))
	assert.False(t, hub.Leave("no-such-client", TopicPublicOrders))

	// a disconnected client is gone too
	sub := hub.Subscribe()
	hub.Unsubscribe(sub.ID)
	assert.False(t, hub.Join(sub.ID, TopicPublicOrders))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TopicPublicOrders)

	hub.Unsubscribe(sub.ID)

	_, open := <-sub.C
	assert.False(t, open)

	// publishing afterwards must not panic or deliver
	hub.Publish(TopicPublicOrders, Event{Name: EventPublicOrderUpdate})
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TopicPublicOrders)
	defer hub.Unsubscribe(sub.ID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(TopicPublicOrders, Event{Name: EventPublicOrderUpdate, Data: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// the buffer holds at most subscriberBuffer events, the rest were dropped
	received := 0
	for {
		select {
		case <-sub.C:
			received++
		default:
			require.LessOrEqual(t, received, subscriberBuffer)
			return
		}
	}
}

func TestBridgeRoutesPublishes(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TopicPublicOrders)
	defer hub.Unsubscribe(sub.ID)

	var bridged []Event
	hub.SetBridge(func(topic string, event Event) {
		bridged = append(bridged, event)
		hub.Deliver(topic, event) // loopback, as the redis bridge does
	})

	hub.Publish(TopicPublicOrders, Event{Name: EventPublicOrderUpdate})

	require.Len(t, bridged, 1)
	assert.Equal(t, EventPublicOrderUpdate, receive(t, sub).Name)
}
