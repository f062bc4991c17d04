// Package events provides small generic pub/sub primitives used to fan state
// changes out from the engine, the workout store and the UI model.
package events

import "sync"

// registry is the listener bookkeeping shared by ChannelEvent and CallbackEvent.
// When replayLast is set it remembers the last published value and hands it
// to listeners that register afterwards.
type registry[L any, T any] struct {
	mu         sync.RWMutex
	listeners  map[uint64]L
	nextID     uint64
	replayLast bool
	last       T
	hasLast    bool
}

func (r *registry[L, T]) setup(replayLast bool) {
	r.listeners = make(map[uint64]L)
	r.replayLast = replayLast
}

// add stores the listener and returns its deregistration func plus the value
// to replay, if any.
func (r *registry[L, T]) add(listener L) (func(), T, bool) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = listener
	last, replay := r.last, r.replayLast && r.hasLast
	r.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
	return remove, last, replay
}

// publish records value and returns a copy of the listeners to call outside the lock.
func (r *registry[L, T]) publish(value T) []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replayLast {
		r.last = value
		r.hasLast = true
	}
	listeners := make([]L, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

func (r *registry[L, T]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Last returns the most recent published value when replay is enabled.
func (r *registry[L, T]) Last() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.hasLast
}
