// Package watch fans state snapshots out to subscribers.
//
// Each subscriber owns a channel with room for one value. Publishing replaces any value the
// subscriber has not read yet, so a slow reader only ever misses intermediate states and a
// publisher never blocks.
package watch

import (
	"context"
	"sync"
)

// Broadcaster delivers the latest published value of T to every subscriber.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan T
}

// New creates an empty broadcaster.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[uint64]chan T)}
}

// Subscribe registers a subscriber that immediately holds initial. The channel is closed once
// ctx is done.
func (b *Broadcaster[T]) Subscribe(ctx context.Context, initial T) <-chan T {
	ch := make(chan T, 1)
	ch <- initial

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

// Publish hands v to all subscribers, replacing any unread value.
// Callers that need ordered delivery must serialize their calls to Publish.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Len returns the number of live subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
