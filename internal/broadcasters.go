package internal

import (
	"sync"
)

// This file defines the publish-subscribe model used for repository lifecycle events.
//
// AddListener returns a new receive-only channel; RemoveListener unsubscribes that channel and closes
// it; Broadcast offers a value to every subscribed channel; and Close unsubscribes and closes all of
// them. Broadcast never blocks: a subscriber whose buffer is full misses that value. The repository
// publishes from its polling goroutine, and a slow listener must not be able to stall polling.

const subscriberChannelBufferLength = 10

// Broadcaster fans values out to any number of channel subscribers.
type Broadcaster[V any] struct {
	subscribers []channelPair[V]
	dropped     uint64
	closed      bool
	lock        sync.Mutex
}

// Both ends are kept because a <-chan V returned to the caller does not compare equal to the
// chan<- V we send on.
type channelPair[V any] struct {
	sendCh    chan<- V
	receiveCh <-chan V
}

// NewBroadcaster creates a Broadcaster that operates on the specified value type.
func NewBroadcaster[V any]() *Broadcaster[V] {
	return &Broadcaster[V]{}
}

// AddListener adds a subscriber and returns a channel for it to receive values. If the broadcaster
// has already been closed, the returned channel is closed.
func (b *Broadcaster[V]) AddListener() <-chan V {
	ch := make(chan V, subscriberChannelBufferLength)
	var receiveCh <-chan V = ch
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		close(ch)
		return receiveCh
	}
	b.subscribers = append(b.subscribers, channelPair[V]{sendCh: ch, receiveCh: receiveCh})
	return receiveCh
}

// RemoveListener removes a subscriber. The parameter is the same channel that was returned by
// AddListener. Unknown channels are ignored.
func (b *Broadcaster[V]) RemoveListener(ch <-chan V) {
	b.lock.Lock()
	defer b.lock.Unlock()
	ss := b.subscribers
	for i, s := range ss {
		if s.receiveCh == ch {
			copy(ss[i:], ss[i+1:])
			ss[len(ss)-1] = channelPair[V]{}
			b.subscribers = ss[:len(ss)-1]
			close(s.sendCh)
			break
		}
	}
}

// Broadcast offers a value to all current subscribers and returns the number of subscribers that
// could not accept it.
//
// The lock is held for the whole fan-out; that is safe because every send is non-blocking, and it
// guarantees that a channel is never closed while a send to it is in progress.
func (b *Broadcaster[V]) Broadcast(value V) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	missed := 0
	for _, s := range b.subscribers {
		select {
		case s.sendCh <- value:
		default:
			missed++
		}
	}
	b.dropped += uint64(missed)
	return missed
}

// Dropped returns the total number of values that subscribers have missed because their buffer was full.
func (b *Broadcaster[V]) Dropped() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.dropped
}

// Close closes all current subscriber channels. Later calls to AddListener return closed channels.
func (b *Broadcaster[V]) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, s := range b.subscribers {
		close(s.sendCh)
	}
	b.subscribers = nil
	b.closed = true
}
