// Package wakelock keeps the display from sleeping while a workout runs.
package wakelock

import (
	"errors"
	"io"
	"log"
	"sync"
)

// ErrUnsupported is returned by an Inhibitor on platforms without a screen
// saver inhibition service.
var ErrUnsupported = errors.New("wake lock not supported")

// Inhibitor talks to the platform service. Inhibit returns a handle that
// Uninhibit later releases.
type Inhibitor interface {
	Inhibit(reason string) (uint32, error)
	Uninhibit(cookie uint32) error
	Close() error
}

// Manager holds at most one inhibition at a time. All failures are logged
// and otherwise ignored.
type Manager struct {
	logger    *log.Logger
	inhibitor Inhibitor
	reason    string

	mu       sync.Mutex
	held     bool
	cookie   uint32
	disabled bool
}

// NewManager creates a Manager. A nil inhibitor disables wake locking.
func NewManager(logger *log.Logger, inhibitor Inhibitor, reason string) *Manager {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Manager{
		logger:    logger,
		inhibitor: inhibitor,
		reason:    reason,
		disabled:  inhibitor == nil,
	}
}

// Acquire requests the wake lock. Calling it while held does nothing.
func (m *Manager) Acquire() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled || m.held {
		return
	}

	cookie, err := m.inhibitor.Inhibit(m.reason)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			m.logger.Printf("WakeLockManager: Wake lock not supported")
			m.disabled = true
			return
		}
		m.logger.Printf("WakeLockManager: Failed to acquire wake lock: %v", err)
		return
	}

	m.held = true
	m.cookie = cookie
	m.logger.Printf("WakeLockManager: Wake lock acquired")
}

// Release drops the wake lock if held.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.held {
		return
	}
	m.held = false

	if err := m.inhibitor.Uninhibit(m.cookie); err != nil {
		m.logger.Printf("WakeLockManager: Failed to release wake lock: %v", err)
		return
	}
	m.logger.Printf("WakeLockManager: Wake lock released")
}

// Held reports whether the lock is currently held.
func (m *Manager) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// Close releases the lock and the platform connection.
func (m *Manager) Close() error {
	m.Release()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inhibitor == nil {
		return nil
	}
	err := m.inhibitor.Close()
	m.inhibitor = nil
	m.disabled = true
	return err
}
