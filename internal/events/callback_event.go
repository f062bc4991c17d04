package events

// CallbackEvent calls listener funcs synchronously on the publishing goroutine.
type CallbackEvent[T any] struct {
	registry[func(T), T]
}

// NewCallbackEvent creates a CallbackEvent. With replayLast, a new listener is
// called immediately with the last value published before it registered.
func NewCallbackEvent[T any](replayLast bool) *CallbackEvent[T] {
	e := &CallbackEvent[T]{}
	e.setup(replayLast)
	return e
}

// Listen registers fn and returns a func that deregisters it.
func (e *CallbackEvent[T]) Listen(fn func(T)) func() {
	if fn == nil {
		panic("events: nil callback")
	}
	remove, last, replay := e.add(fn)
	if replay {
		fn(last)
	}
	return remove
}

// Notify calls every listener with value, outside the registry lock so
// listeners may deregister themselves.
func (e *CallbackEvent[T]) Notify(value T) {
	for _, fn := range e.publish(value) {
		fn(value)
	}
}

// ListenerCount returns the number of registered callbacks.
func (e *CallbackEvent[T]) ListenerCount() int {
	return e.count()
}
