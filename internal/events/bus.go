// Package events provides typed publish/subscribe channels, one Bus per event
// kind. Buses are not safe for concurrent use; publishers and subscribers are
// expected to run on the same event loop.
package events

// Handler receives published events
type Handler[T any] func(T)

// Bus delivers events of a single type to its subscribers in subscription order
type Bus[T any] struct {
	nextID   int
	handlers []subscription[T]
}

type subscription[T any] struct {
	id      int
	handler Handler[T]
}

// Subscribe registers h and returns a function that removes it
func (b *Bus[T]) Subscribe(h Handler[T]) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, subscription[T]{id: id, handler: h})

	return func() {
		for i, s := range b.handlers {
			if s.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every subscriber with e. Subscribers added or removed during
// delivery take effect for the next event.
func (b *Bus[T]) Publish(e T) {
	snapshot := b.handlers
	for _, s := range snapshot {
		s.handler(e)
	}
}

// Len returns the number of subscribers
func (b *Bus[T]) Len() int {
	return len(b.handlers)
}

// Subscriptions collects unsubscribe functions so a component can detach all
// its handlers at once
type Subscriptions []func()

// Add records an unsubscribe function
func (s *Subscriptions) Add(unsubscribe func()) {
	*s = append(*s, unsubscribe)
}

// Close removes every recorded subscription
func (s *Subscriptions) Close() {
	for _, unsubscribe := range *s {
		unsubscribe()
	}
	*s = nil
}
