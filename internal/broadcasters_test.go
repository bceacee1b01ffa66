package internal

import (
	"fmt"
	"sync"
	"testing"
	"time"

	th "github.com/launchdarkly/go-test-helpers/v3"

	"github.com/stretchr/testify/assert"
)

func TestBroadcaster(t *testing.T) {
	var n int
	testBroadcasterGenerically(t, NewBroadcaster[string],
		func() string {
			n++
			return fmt.Sprintf("value%d", n)
		})
}

func testBroadcasterGenerically[V any](t *testing.T, broadcasterFactory func() *Broadcaster[V], valueFactory func() V) {
	timeout := time.Second

	withBroadcaster := func(t *testing.T, action func(*Broadcaster[V])) {
		b := broadcasterFactory()
		defer b.Close()
		action(b)
	}

	t.Run("broadcast with no subscribers", func(t *testing.T) {
		withBroadcaster(t, func(b *Broadcaster[V]) {
			assert.Equal(t, 0, b.Broadcast(valueFactory()))
		})
	})

	t.Run("broadcast with subscribers", func(t *testing.T) {
		withBroadcaster(t, func(b *Broadcaster[V]) {
			ch1 := b.AddListener()
			ch2 := b.AddListener()

			value := valueFactory()
			b.Broadcast(value)

			assert.Equal(t, value, th.RequireValue(t, ch1, timeout))
			assert.Equal(t, value, th.RequireValue(t, ch2, timeout))
		})
	})

	t.Run("unregister subscriber", func(t *testing.T) {
		withBroadcaster(t, func(b *Broadcaster[V]) {
			ch1 := b.AddListener()
			ch2 := b.AddListener()

			b.RemoveListener(ch1)
			th.AssertChannelClosed(t, ch1, time.Millisecond)

			value := valueFactory()
			b.Broadcast(value)

			assert.Equal(t, value, th.RequireValue(t, ch2, timeout))
		})
	})

	t.Run("listener added after close is closed", func(t *testing.T) {
		b := broadcasterFactory()
		b.Close()
		th.AssertChannelClosed(t, b.AddListener(), time.Millisecond)
	})
}

func TestBroadcasterDataRace(t *testing.T) {
	t.Parallel()
	b := NewBroadcaster[string]()
	t.Cleanup(b.Close)

	var waitGroup sync.WaitGroup
	for _, fn := range []func(){
		func() { b.AddListener() },
		func() { b.Broadcast("foo") },
		func() { b.Close() },
		func() { b.RemoveListener(nil) },
		func() { b.Dropped() },
	} {
		for i := 0; i < 2; i++ {
			waitGroup.Add(1)
			fn := fn
			go func() {
				defer waitGroup.Done()
				fn()
			}()
		}
	}
	waitGroup.Wait()
}

func TestBroadcastDoesNotBlockOnFullListener(t *testing.T) {
	b := NewBroadcaster[string]()
	t.Cleanup(b.Close)

	slow := b.AddListener()
	for i := 0; i < subscriberChannelBufferLength; i++ {
		assert.Equal(t, 0, b.Broadcast("foo"))
	}

	isUnblocked := make(chan struct{})
	go func() {
		b.Broadcast("dropped")
		close(isUnblocked)
	}()
	th.AssertChannelClosed(t, isUnblocked, time.Second)
	assert.Equal(t, uint64(1), b.Dropped())

	fast := b.AddListener()
	assert.Equal(t, 1, b.Broadcast("bar"))
	assert.Equal(t, "bar", th.RequireValue(t, fast, time.Second))
	assert.Equal(t, "foo", th.RequireValue(t, slow, time.Second))
}
