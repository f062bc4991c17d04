package trainer

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/lowaak/smart-trainer/tabata-app/internal/events"
	"github.com/lowaak/smart-trainer/tabata-app/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode UIMode
}

// WorkoutList is the saved workouts with the index of the selected one.
// Selected is -1 when the list is empty.
type WorkoutList struct {
	Workouts []interval.WorkoutConfig
	Selected int
}

// SelectedWorkout returns the selected workout, if any
func (l WorkoutList) SelectedWorkout() (interval.WorkoutConfig, bool) {
	if l.Selected < 0 || l.Selected >= len(l.Workouts) {
		return interval.WorkoutConfig{}, false
	}
	return l.Workouts[l.Selected], true
}

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	workoutListEvent      *events.ChannelEvent[WorkoutList]
	workoutList           WorkoutList
	timerEvent            *events.ChannelEvent[interval.Snapshot]
	timer                 interval.Snapshot
	persistence           *uiModelPersistence
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

const maxLogLines = 1000

// NewUIModel creates the model. stateDir holds the persisted UI state.
func NewUIModel(logger *log.Logger, uiLogChan <-chan string, stateDir string) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeWorkoutSelection},
		workoutListEvent:      events.NewChannelEvent[WorkoutList](true),
		workoutList:           WorkoutList{Selected: -1},
		timerEvent:            events.NewChannelEvent[interval.Snapshot](true),
		timer:                 interval.Snapshot{Phase: interval.PhaseStopped, CurrentRound: 1, CurrentExercise: 1},
		persistence:           newUIModelPersistence(stateDir, logger),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	// Read from the UI log channel and populate logLines
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// ListenToWorkoutList registers a channel to receive workout list changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToWorkoutList(ch chan<- WorkoutList) func() {
	return m.workoutListEvent.Listen(ch)
}

// GetWorkoutList returns a copy of the current workout list
func (m *UIModel) GetWorkoutList() WorkoutList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyWorkoutList()
}

// SetWorkouts replaces the workout list. The selection follows the selected
// workout's ID, falling back to the persisted last workout and then the first.
func (m *UIModel) SetWorkouts(workouts []interval.WorkoutConfig) {
	m.mu.Lock()
	preferred := ""
	if current, ok := m.workoutList.SelectedWorkout(); ok {
		preferred = current.ID
	} else {
		preferred = m.persistence.getLastWorkoutID()
	}
	m.workoutList.Workouts = slices.Clone(workouts)
	m.workoutList.Selected = indexOfWorkout(workouts, preferred)
	if m.workoutList.Selected < 0 && len(workouts) > 0 {
		m.workoutList.Selected = 0
	}
	list := m.copyWorkoutList()
	m.mu.Unlock()

	m.workoutListEvent.Notify(list)
}

// SelectWorkout marks the workout with id as selected and remembers it for
// the next launch. Returns false if no such workout exists.
func (m *UIModel) SelectWorkout(id string) (interval.WorkoutConfig, bool) {
	m.mu.Lock()
	idx := indexOfWorkout(m.workoutList.Workouts, id)
	if idx < 0 {
		m.mu.Unlock()
		return interval.WorkoutConfig{}, false
	}
	m.workoutList.Selected = idx
	workout := m.workoutList.Workouts[idx]
	list := m.copyWorkoutList()
	m.mu.Unlock()

	m.persistence.setLastWorkoutID(id)
	m.workoutListEvent.Notify(list)
	return workout, true
}

// GetSelectedWorkout returns the selected workout, if any
func (m *UIModel) GetSelectedWorkout() (interval.WorkoutConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workoutList.SelectedWorkout()
}

// ListenToTimer registers a channel to receive timer snapshots
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToTimer(ch chan<- interval.Snapshot) func() {
	return m.timerEvent.Listen(ch)
}

// GetTimer returns the latest timer snapshot
func (m *UIModel) GetTimer() interval.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timer
}

// SetTimer stores the latest timer snapshot and notifies listeners
func (m *UIModel) SetTimer(snapshot interval.Snapshot) {
	m.mu.Lock()
	m.timer = snapshot
	m.mu.Unlock()

	m.timerEvent.Notify(snapshot)
}

// copyWorkoutList must be called with mu held
func (m *UIModel) copyWorkoutList() WorkoutList {
	return WorkoutList{
		Workouts: slices.Clone(m.workoutList.Workouts),
		Selected: m.workoutList.Selected,
	}
}

func indexOfWorkout(workouts []interval.WorkoutConfig, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(workouts, func(w interval.WorkoutConfig) bool { return w.ID == id })
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				// Channel closed
				return
			}

			// Store in log lines buffer (max 1000 lines)
			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				// Remove oldest lines, keep the most recent maxLogLines
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			// Notify listeners for immediate display
			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}

	if n >= len(m.logLines) {
		result := make([]string, len(m.logLines))
		copy(result, m.logLines)
		return result
	}

	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
