package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/streambench/hooks"
)

func publishN(p *TransferPublisher, n int) {
	for i := 1; i <= n; i++ {
		p.Publish(&TransferItem{Data: V(uint64(i)), Tick: uint64(i), Seq: uint64(i)})
	}
}

func collect(t *testing.T, sub *TransferSub, n int) []*TransferItem {
	t.Helper()
	items := make([]*TransferItem, 0, n)
	timeout := time.After(5 * time.Second)
	for len(items) < n {
		select {
		case item, ok := <-sub.C():
			if !ok {
				return items
			}
			items = append(items, item)
		case <-timeout:
			t.Fatalf("timed out after %d of %d items", len(items), n)
		}
	}
	return items
}

func TestPublisherDeliversInPublishOrder(t *testing.T) {
	p := NewTransferPublisher(nil, UnboundedPolicy())
	sub := p.Subscribe("ordered")
	defer sub.Cancel()

	publishN(p, 100)
	items := collect(t, sub, 100)
	for i, item := range items {
		require.Equal(t, uint64(i+1), item.Seq)
	}
}

func TestPublisherFansOutToAllSubscribers(t *testing.T) {
	p := NewTransferPublisher(nil, UnboundedPolicy())
	a := p.Subscribe("a")
	b := p.Subscribe("b")
	defer a.Cancel()
	defer b.Cancel()

	publishN(p, 10)
	require.Len(t, collect(t, a, 10), 10)
	require.Len(t, collect(t, b, 10), 10)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	p := NewTransferPublisher(nil, UnboundedPolicy())
	sub := p.Subscribe("slow") // never read until the end
	done := make(chan struct{})
	go func() {
		publishN(p, 10000)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow unbounded subscriber")
	}
	require.Len(t, collect(t, sub, 10000), 10000)
}

func TestBoundedDropOldestKeepsMostRecent(t *testing.T) {
	var drops int
	broker := hooks.NewBroker()
	broker.RegisterDrop(func(*hooks.DropContext) { drops++ })

	p := NewTransferPublisher(broker, DropOldestPolicy(8))
	sub := p.Subscribe("bounded")

	// Burst of 20 unconsumed publishes against a bound of 8: exactly 12
	// drop events, and the survivors are items 13..20 in order.
	publishN(p, 20)
	p.Close()

	items := collect(t, sub, 20)
	require.Equal(t, 12, drops)
	require.Len(t, items, 8)
	for i, item := range items {
		require.Equal(t, uint64(13+i), item.Seq)
	}
	require.Equal(t, uint64(12), sub.Dropped())
}

func TestBoundedBlockPolicyBlocksPublisher(t *testing.T) {
	p := NewTransferPublisher(nil, BlockPolicy(2))
	sub := p.Subscribe("blocking")

	published := make(chan struct{})
	go func() {
		publishN(p, 10)
		close(published)
	}()

	select {
	case <-published:
		t.Fatal("publisher was not blocked by a full bounded buffer")
	case <-time.After(50 * time.Millisecond):
	}

	// Draining the subscriber releases the publisher.
	items := collect(t, sub, 10)
	require.Len(t, items, 10)
	select {
	case <-published:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher stayed blocked after drain")
	}
	require.Zero(t, sub.Dropped())
}

func TestUnsubscribeStopsDeliveryWithoutAffectingOthers(t *testing.T) {
	p := NewTransferPublisher(nil, UnboundedPolicy())
	a := p.Subscribe("stays")
	b := p.Subscribe("leaves")

	publishN(p, 5)
	require.Len(t, collect(t, a, 5), 5)
	p.Unsubscribe(b.Handle())

	publishN(p, 5)
	require.Len(t, collect(t, a, 5), 5)

	// The cancelled channel closes; at most the in-flight items arrive.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-b.C():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("cancelled subscription never closed")
		}
	}
}

func TestSubscribeAfterCloseYieldsClosedStream(t *testing.T) {
	p := NewTransferPublisher(nil, UnboundedPolicy())
	p.Close()
	sub := p.Subscribe("late")
	_, ok := <-sub.C()
	require.False(t, ok)
}
