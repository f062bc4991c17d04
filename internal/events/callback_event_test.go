package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func (r *recorder[T]) record(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *recorder[T]) got() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func TestCallbackEvent_ListenNotify(t *testing.T) {
	event := NewCallbackEvent[string](false)
	rec := &recorder[string]{}
	unregister := event.Listen(rec.record)

	event.Notify("a")
	event.Notify("b")
	assert.Equal(t, []string{"a", "b"}, rec.got())

	unregister()
	event.Notify("c")
	assert.Equal(t, []string{"a", "b"}, rec.got())
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_ReplayLast(t *testing.T) {
	type workout struct {
		ID   string
		Name string
	}
	event := NewCallbackEvent[[]workout](true)

	first := &recorder[[]workout]{}
	defer event.Listen(first.record)()
	assert.Empty(t, first.got())

	list := []workout{{ID: "default", Name: "Classic Tabata"}}
	event.Notify(list)

	late := &recorder[[]workout]{}
	defer event.Listen(late.record)()
	assert.Equal(t, [][]workout{list}, late.got())
	assert.Equal(t, [][]workout{list}, first.got())
}

func TestCallbackEvent_UnregisterDuringNotify(t *testing.T) {
	event := NewCallbackEvent[int](false)
	calls := 0
	var unregister func()
	unregister = event.Listen(func(int) {
		calls++
		unregister()
	})

	event.Notify(1)
	event.Notify(2)
	assert.Equal(t, 1, calls)
}

func TestCallbackEvent_NilCallbackPanics(t *testing.T) {
	event := NewCallbackEvent[int](false)
	assert.Panics(t, func() { event.Listen(nil) })
}
