package wakelock

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInhibitor struct {
	inhibitErr   error
	uninhibitErr error
	next         uint32
	active       map[uint32]string
	inhibits     int
	closed       bool
}

func newFakeInhibitor() *fakeInhibitor {
	return &fakeInhibitor{next: 41, active: map[uint32]string{}}
}

func (f *fakeInhibitor) Inhibit(reason string) (uint32, error) {
	f.inhibits++
	if f.inhibitErr != nil {
		return 0, f.inhibitErr
	}
	f.next++
	f.active[f.next] = reason
	return f.next, nil
}

func (f *fakeInhibitor) Uninhibit(cookie uint32) error {
	if f.uninhibitErr != nil {
		return f.uninhibitErr
	}
	if _, ok := f.active[cookie]; !ok {
		return fmt.Errorf("unknown cookie %d", cookie)
	}
	delete(f.active, cookie)
	return nil
}

func (f *fakeInhibitor) Close() error {
	f.closed = true
	return nil
}

func TestManager_AcquireRelease(t *testing.T) {
	inhibitor := newFakeInhibitor()
	m := NewManager(nil, inhibitor, "Workout in progress")

	m.Acquire()
	m.Acquire()
	assert.True(t, m.Held())
	assert.Equal(t, 1, inhibitor.inhibits)
	assert.Equal(t, map[uint32]string{42: "Workout in progress"}, inhibitor.active)

	m.Release()
	m.Release()
	assert.False(t, m.Held())
	assert.Empty(t, inhibitor.active)

	m.Acquire()
	assert.Equal(t, 2, inhibitor.inhibits)
	assert.Contains(t, inhibitor.active, uint32(43))
}

func TestManager_ReleaseWithoutAcquire(t *testing.T) {
	inhibitor := newFakeInhibitor()
	m := NewManager(nil, inhibitor, "")

	m.Release()
	assert.False(t, m.Held())
	assert.Zero(t, inhibitor.inhibits)
}

func TestManager_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	inhibitor := newFakeInhibitor()
	inhibitor.inhibitErr = fmt.Errorf("%w: no service", ErrUnsupported)
	m := NewManager(log.New(&buf, "", 0), inhibitor, "")

	m.Acquire()
	m.Acquire()
	m.Release()

	assert.False(t, m.Held())
	assert.Equal(t, 1, inhibitor.inhibits, "unsupported platform is not retried")
	assert.Equal(t, 1, strings.Count(buf.String(), "not supported"))
}

func TestManager_TransientFailureRetried(t *testing.T) {
	var buf bytes.Buffer
	inhibitor := newFakeInhibitor()
	inhibitor.inhibitErr = errors.New("timeout")
	m := NewManager(log.New(&buf, "", 0), inhibitor, "")

	m.Acquire()
	assert.False(t, m.Held())
	assert.Contains(t, buf.String(), "Failed to acquire wake lock: timeout")

	inhibitor.inhibitErr = nil
	m.Acquire()
	assert.True(t, m.Held())
}

func TestManager_ReleaseFailureDropsHandle(t *testing.T) {
	inhibitor := newFakeInhibitor()
	m := NewManager(nil, inhibitor, "")

	m.Acquire()
	inhibitor.uninhibitErr = errors.New("bus gone")
	m.Release()
	assert.False(t, m.Held())
}

func TestManager_Disabled(t *testing.T) {
	m := NewManager(nil, nil, "")

	m.Acquire()
	assert.False(t, m.Held())
	m.Release()
	require.NoError(t, m.Close())
}

func TestManager_Close(t *testing.T) {
	inhibitor := newFakeInhibitor()
	m := NewManager(nil, inhibitor, "")

	m.Acquire()
	require.NoError(t, m.Close())
	assert.True(t, inhibitor.closed)
	assert.Empty(t, inhibitor.active)

	m.Acquire()
	assert.False(t, m.Held())
	require.NoError(t, m.Close())
}
