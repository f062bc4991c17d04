package trainer

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
)

type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Reset(time.Duration) {}
func (m *manualTicker) Stop()               {}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// oneShotWorkout completes one tick after its Ready phase is skipped
func oneShotWorkout() interval.WorkoutConfig {
	return interval.WorkoutConfig{
		ID:                "short",
		Name:              "Short",
		ExerciseDuration:  1,
		RestDuration:      0,
		ExerciseCount:     1,
		RoundCount:        1,
		RoundRestDuration: 0,
	}
}

type managerHarness struct {
	model   *UIModel
	engine  *interval.Engine
	ticker  *manualTicker
	manager *WorkoutManager
}

func newManagerHarness(t *testing.T) *managerHarness {
	t.Helper()
	logger := testLogger()
	h := &managerHarness{ticker: &manualTicker{ch: make(chan time.Time)}}
	h.model = NewUIModel(logger, make(chan string), t.TempDir())
	h.engine = interval.NewEngine(interval.Options{
		NewTicker: func(time.Duration) interval.Ticker { return h.ticker },
		Logger:    logger,
	})
	h.manager = NewWorkoutManager(h.model, h.engine, logger)
	t.Cleanup(func() {
		h.manager.Shutdown()
		h.engine.Shutdown()
		h.model.Shutdown()
	})
	return h
}

func (h *managerHarness) phase() interval.Phase {
	return h.engine.Snapshot().Phase
}

func (h *managerHarness) tick() {
	h.ticker.ch <- time.Now()
}

func TestWorkoutManager_StartWithoutWorkout(t *testing.T) {
	h := newManagerHarness(t)

	h.manager.Start()
	h.manager.Toggle()

	assert.Equal(t, interval.PhaseStopped, h.phase())
	_, ok := h.manager.Workout()
	assert.False(t, ok)
}

func TestWorkoutManager_ToggleCyclesThroughPhases(t *testing.T) {
	h := newManagerHarness(t)
	require.True(t, h.manager.SetWorkout(oneShotWorkout()))

	h.manager.Toggle()
	assert.Equal(t, interval.PhaseReady, h.phase())

	h.manager.Toggle()
	assert.Equal(t, interval.PhasePaused, h.phase())

	h.manager.Toggle()
	assert.Equal(t, interval.PhaseReady, h.phase())

	h.manager.Skip()
	assert.Equal(t, interval.PhaseExercise, h.phase())

	h.tick()
	require.Eventually(t, func() bool { return h.phase() == interval.PhaseCompleted }, time.Second, 5*time.Millisecond)

	h.manager.Toggle()
	assert.Equal(t, interval.PhaseStopped, h.phase(), "toggle resets a completed run")
}

func TestWorkoutManager_SetWorkoutRefusedWhileRunning(t *testing.T) {
	h := newManagerHarness(t)
	require.True(t, h.manager.SetWorkout(oneShotWorkout()))
	h.manager.Start()

	other := interval.DefaultWorkoutConfig()
	assert.False(t, h.manager.SetWorkout(other))

	h.manager.Pause()
	assert.False(t, h.manager.SetWorkout(other))

	loaded, ok := h.manager.Workout()
	require.True(t, ok)
	assert.Equal(t, "short", loaded.ID)
}

func TestWorkoutManager_SetWorkoutResetsCompletedRun(t *testing.T) {
	h := newManagerHarness(t)
	require.True(t, h.manager.SetWorkout(oneShotWorkout()))
	h.manager.Start()
	h.manager.Skip()
	h.tick()
	require.Eventually(t, func() bool { return h.phase() == interval.PhaseCompleted }, time.Second, 5*time.Millisecond)

	require.True(t, h.manager.SetWorkout(interval.DefaultWorkoutConfig()))
	assert.Equal(t, interval.PhaseStopped, h.phase())

	loaded, _ := h.manager.Workout()
	assert.Equal(t, "default", loaded.ID)
}

func TestWorkoutManager_ForwardsSnapshotsToModel(t *testing.T) {
	h := newManagerHarness(t)
	require.True(t, h.manager.SetWorkout(oneShotWorkout()))

	h.manager.Start()

	require.Eventually(t, func() bool {
		return h.model.GetTimer().Phase == interval.PhaseReady
	}, time.Second, 5*time.Millisecond)
	timer := h.model.GetTimer()
	assert.Equal(t, interval.ReadyCountdown, timer.TimeRemaining)
	assert.Equal(t, "Short", timer.Workout.Name)

	h.manager.Stop()
	require.Eventually(t, func() bool {
		return h.model.GetTimer().Phase == interval.PhaseStopped
	}, time.Second, 5*time.Millisecond)
}

func TestWorkoutManager_ShutdownIsIdempotent(t *testing.T) {
	h := newManagerHarness(t)
	h.manager.Shutdown()
	h.manager.Shutdown()
}
