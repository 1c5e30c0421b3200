package api

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	topic := "t_test"
	ch := b.Subscribe(topic)

	evt := Event{Type: "evaluation.completed", Data: map[string]any{"routeId": "RT-1"}}
	b.Publish(topic, evt)

	select {
	case got := <-ch:
		require.Equal(t, evt.Type, got.Type)
		require.Equal(t, "RT-1", got.Data["routeId"])
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(topic, ch)
	select {
	case _, ok := <-ch:
		require.False(t, ok, "channel should be closed after unsubscribe")
	case <-time.After(50 * time.Millisecond):
		// drained and closed
	}
}

func TestBrokerPublishAfterUnsubscribe(t *testing.T) {
	b := NewBroker()
	topic := "t_test"
	ch := b.Subscribe(topic)
	b.Unsubscribe(topic, ch)

	// An unsubscribed channel must never be a publish target again.
	b.Publish(topic, Event{Type: "evaluation.completed", Data: map[string]any{}})
	b.Publish(topic, Event{Type: "scenario.analyzed", Data: map[string]any{}})
}

func TestRedisBrokerUnsubscribeClosesPubSub(t *testing.T) {
	// No Redis needed: the client dials lazily, so the PubSub handle can be
	// created and closed without a reachable server.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer func() { _ = rdb.Close() }()
	b := &RedisBroker{rdb: rdb, subs: map[chan Event]*redis.PubSub{}}

	ch := make(chan Event, 16)
	ps := rdb.Subscribe(context.Background(), "plan:t_test")
	b.subs[ch] = ps

	b.Unsubscribe("t_test", ch)
	require.Empty(t, b.subs)

	// Unsubscribe closed the PubSub, so a second close reports it.
	require.Error(t, ps.Close())

	// The subscriber channel belongs to the reader goroutine; Unsubscribe
	// must leave it open.
	select {
	case _, ok := <-ch:
		require.True(t, ok, "channel closed by Unsubscribe")
	default:
	}

	// repeat unsubscribe is a no-op
	b.Unsubscribe("t_test", ch)
}

func TestBrokerTopicsAreIsolated(t *testing.T) {
	b := NewBroker()
	chA := b.Subscribe("tenant-a")
	defer b.Unsubscribe("tenant-a", chA)

	b.Publish("tenant-b", Event{Type: "scenario.analyzed", Data: map[string]any{}})

	select {
	case evt := <-chA:
		t.Fatalf("unexpected event on tenant-a: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerDropsWhenSubscriberSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("t")
	defer b.Unsubscribe("t", ch)

	// Fill the buffer and keep publishing; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish("t", Event{Type: "evaluation.completed", Data: map[string]any{"i": i}})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}
