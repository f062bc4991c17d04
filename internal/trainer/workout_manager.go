package trainer

import (
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/tabata-app/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
)

// IntervalEngine is the part of interval.Engine the workout manager drives
type IntervalEngine interface {
	Start(cfg interval.WorkoutConfig)
	Pause()
	Resume()
	Stop()
	Restart()
	Skip()
	Snapshot() interval.Snapshot
	Listen(ch chan<- interval.Snapshot) func()
}

// WorkoutManager owns the loaded workout and translates user actions into
// engine intents. Engine snapshots are forwarded to the UI model.
type WorkoutManager struct {
	model  *UIModel
	engine IntervalEngine
	logger *log.Logger

	// Loaded workout (protected by mu)
	mu      sync.RWMutex
	workout *interval.WorkoutConfig

	// Goroutine management
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewWorkoutManager creates a new WorkoutManager
func NewWorkoutManager(model *UIModel, engine IntervalEngine, logger *log.Logger) *WorkoutManager {
	if model == nil {
		panic("WorkoutManager: model cannot be nil")
	}
	if engine == nil {
		panic("WorkoutManager: engine cannot be nil")
	}
	if logger == nil {
		panic("WorkoutManager: logger cannot be nil")
	}

	wm := &WorkoutManager{
		model:    model,
		engine:   engine,
		logger:   logger,
		doneChan: make(chan struct{}),
	}

	snapshots := make(chan interval.Snapshot, 16)
	unregister := engine.Listen(snapshots)

	wm.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { wm.forwardSnapshots(snapshots, unregister) })

	return wm
}

// SetWorkout loads a workout for the next run. Refused while a run is in
// progress; a completed run is reset first.
func (wm *WorkoutManager) SetWorkout(workout interval.WorkoutConfig) bool {
	switch wm.engine.Snapshot().Phase {
	case interval.PhaseStopped:
	case interval.PhaseCompleted:
		wm.engine.Restart()
	default:
		wm.logger.Printf("WorkoutManager: Cannot set workout while running or paused")
		return false
	}

	wm.mu.Lock()
	wm.workout = &workout
	wm.mu.Unlock()

	wm.logger.Printf("WorkoutManager: Workout '%s' loaded (duration: %v)", workout.Name, workout.TotalDuration())
	return true
}

// Workout returns the loaded workout, if any
func (wm *WorkoutManager) Workout() (interval.WorkoutConfig, bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	if wm.workout == nil {
		return interval.WorkoutConfig{}, false
	}
	return *wm.workout, true
}

// Start begins a run of the loaded workout
func (wm *WorkoutManager) Start() {
	workout, ok := wm.Workout()
	if !ok {
		wm.logger.Printf("WorkoutManager: No workout loaded")
		return
	}
	wm.logger.Printf("WorkoutManager: Starting workout '%s'", workout.Name)
	wm.engine.Start(workout)
}

// Toggle performs the primary action for the current phase: start when
// stopped, pause or resume a run, and reset a completed run.
func (wm *WorkoutManager) Toggle() {
	phase := wm.engine.Snapshot().Phase
	switch {
	case phase == interval.PhaseStopped:
		wm.Start()
	case phase == interval.PhasePaused:
		wm.engine.Resume()
	case phase.Ticking():
		wm.engine.Pause()
	case phase == interval.PhaseCompleted:
		wm.engine.Restart()
	}
}

// Pause freezes the countdown
func (wm *WorkoutManager) Pause() {
	wm.engine.Pause()
}

// Resume continues a paused run
func (wm *WorkoutManager) Resume() {
	wm.engine.Resume()
}

// Skip ends the Ready countdown early
func (wm *WorkoutManager) Skip() {
	wm.engine.Skip()
}

// Stop abandons the run
func (wm *WorkoutManager) Stop() {
	if wm.engine.Snapshot().Phase == interval.PhaseStopped {
		wm.logger.Printf("WorkoutManager: No workout to stop")
		return
	}
	wm.logger.Printf("WorkoutManager: Stopping workout")
	wm.engine.Stop()
}

// Snapshot returns the engine's current snapshot
func (wm *WorkoutManager) Snapshot() interval.Snapshot {
	return wm.engine.Snapshot()
}

// Shutdown stops forwarding snapshots
// Safe to call multiple times - only the first call has effect
func (wm *WorkoutManager) Shutdown() {
	wm.shutdownOnce.Do(func() {
		wm.logger.Printf("WorkoutManager: Shutting down")
		close(wm.doneChan)
		wm.wg.Wait()
		wm.logger.Printf("WorkoutManager: Shutdown complete")
	})
}

func (wm *WorkoutManager) forwardSnapshots(snapshots <-chan interval.Snapshot, unregister func()) {
	defer wm.wg.Done()
	defer unregister()

	for {
		select {
		case <-wm.doneChan:
			return
		case snapshot := <-snapshots:
			wm.model.SetTimer(snapshot)
		}
	}
}
