package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	var zero T
	return zero
}

func assertEmpty[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value: %v", v)
	default:
	}
}

func TestChannelEvent_ListenNotify(t *testing.T) {
	event := NewChannelEvent[string](false)
	ch := make(chan string, 4)
	unregister := event.Listen(ch)
	assert.Equal(t, 1, event.ListenerCount())

	assert.Equal(t, 1, event.Notify("ready"))
	assert.Equal(t, 1, event.Notify("exercise"))
	assert.Equal(t, "ready", receive(t, ch))
	assert.Equal(t, "exercise", receive(t, ch))

	unregister()
	assert.Equal(t, 0, event.ListenerCount())
	assert.Equal(t, 0, event.Notify("rest"))
	assertEmpty(t, ch)
}

func TestChannelEvent_ReplayLast(t *testing.T) {
	event := NewChannelEvent[int](true)

	early := make(chan int, 4)
	defer event.Listen(early)()
	assertEmpty(t, early)

	event.Notify(7)
	assert.Equal(t, 7, receive(t, early))

	late := make(chan int, 4)
	defer event.Listen(late)()
	assert.Equal(t, 7, receive(t, late))

	last, ok := event.Last()
	require.True(t, ok)
	assert.Equal(t, 7, last)
}

func TestChannelEvent_NoReplayWithoutFlag(t *testing.T) {
	event := NewChannelEvent[string](false)
	event.Notify("missed")

	ch := make(chan string, 1)
	defer event.Listen(ch)()
	assertEmpty(t, ch)

	_, ok := event.Last()
	assert.False(t, ok)
}

func TestChannelEvent_FullChannelIsSkipped(t *testing.T) {
	event := NewChannelEvent[string](false)
	ch := make(chan string, 1)
	defer event.Listen(ch)()

	ch <- "blocking"
	assert.Equal(t, 0, event.Notify("dropped"))
	assert.Len(t, ch, 1)

	<-ch
	assert.Equal(t, 1, event.Notify("delivered"))
	assert.Equal(t, "delivered", receive(t, ch))
}

func TestChannelEvent_NilChannelPanics(t *testing.T) {
	event := NewChannelEvent[string](false)
	assert.Panics(t, func() { event.Listen(nil) })
}

func TestChannelEvent_UnregisterTwice(t *testing.T) {
	event := NewChannelEvent[int](false)
	first := event.Listen(make(chan int, 1))
	defer event.Listen(make(chan int, 1))()

	first()
	first()
	assert.Equal(t, 1, event.ListenerCount())
}

func TestChannelEvent_ConcurrentNotify(t *testing.T) {
	event := NewChannelEvent[int](false)
	channels := make([]chan int, 8)
	for i := range channels {
		channels[i] = make(chan int, 16)
		defer event.Listen(channels[i])()
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			event.Notify(v)
		}(i)
	}
	wg.Wait()

	for _, ch := range channels {
		assert.Len(t, ch, 5)
	}
}
