package events

// ChannelEvent delivers published values to listener channels.
// Sends never block: a listener whose channel is full misses that value.
type ChannelEvent[T any] struct {
	registry[chan<- T, T]
}

// NewChannelEvent creates a ChannelEvent. With replayLast, a new listener
// immediately receives the last value published before it registered.
func NewChannelEvent[T any](replayLast bool) *ChannelEvent[T] {
	e := &ChannelEvent[T]{}
	e.setup(replayLast)
	return e
}

// Listen registers ch and returns a func that deregisters it.
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("events: nil channel")
	}
	remove, last, replay := e.add(ch)
	if replay {
		trySend(ch, last)
	}
	return remove
}

// Notify publishes value to every listener and returns how many received it.
func (e *ChannelEvent[T]) Notify(value T) int {
	delivered := 0
	for _, ch := range e.publish(value) {
		if trySend(ch, value) {
			delivered++
		}
	}
	return delivered
}

// ListenerCount returns the number of registered channels.
func (e *ChannelEvent[T]) ListenerCount() int {
	return e.count()
}

func trySend[T any](ch chan<- T, value T) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}
