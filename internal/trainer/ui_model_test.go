package trainer

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
)

func namedWorkout(id, name string) interval.WorkoutConfig {
	w := interval.DefaultWorkoutConfig()
	w.ID = id
	w.Name = name
	return w
}

func newTestModel(t *testing.T, stateDir string) (*UIModel, chan string) {
	t.Helper()
	logChan := make(chan string, 16)
	model := NewUIModel(testLogger(), logChan, stateDir)
	t.Cleanup(model.Shutdown)
	return model, logChan
}

func TestUIModel_NilArgumentsPanic(t *testing.T) {
	assert.Panics(t, func() { NewUIModel(nil, make(chan string), t.TempDir()) })
	assert.Panics(t, func() { NewUIModel(testLogger(), nil, t.TempDir()) })
}

func TestUIModel_SetMode(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())
	assert.Equal(t, UIModeWorkoutSelection, model.GetUIState().Mode)

	ch := make(chan UIState, 4)
	unregister := model.ListenToUIState(ch)
	defer unregister()

	model.SetMode(UIModeTimer)
	model.SetMode(UIModeTimer)

	assert.Equal(t, UIModeTimer, (<-ch).Mode)
	assert.Empty(t, ch, "unchanged mode is not republished")
}

func TestUIModel_SetWorkoutsSelectsFirst(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())

	_, ok := model.GetSelectedWorkout()
	assert.False(t, ok)

	model.SetWorkouts([]interval.WorkoutConfig{namedWorkout("a", "A"), namedWorkout("b", "B")})

	list := model.GetWorkoutList()
	assert.Len(t, list.Workouts, 2)
	assert.Equal(t, 0, list.Selected)
}

func TestUIModel_SelectionFollowsID(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())
	model.SetWorkouts([]interval.WorkoutConfig{namedWorkout("a", "A"), namedWorkout("b", "B")})

	selected, ok := model.SelectWorkout("b")
	require.True(t, ok)
	assert.Equal(t, "B", selected.Name)

	// Reordered list keeps the same workout selected
	model.SetWorkouts([]interval.WorkoutConfig{namedWorkout("c", "C"), namedWorkout("b", "B"), namedWorkout("a", "A")})
	assert.Equal(t, 1, model.GetWorkoutList().Selected)

	// Deleted selection falls back to the first workout
	model.SetWorkouts([]interval.WorkoutConfig{namedWorkout("c", "C")})
	selected, ok = model.GetSelectedWorkout()
	require.True(t, ok)
	assert.Equal(t, "c", selected.ID)

	_, ok = model.SelectWorkout("missing")
	assert.False(t, ok)

	model.SetWorkouts(nil)
	assert.Equal(t, -1, model.GetWorkoutList().Selected)
}

func TestUIModel_LastWorkoutPersisted(t *testing.T) {
	stateDir := t.TempDir()
	workouts := []interval.WorkoutConfig{namedWorkout("a", "A"), namedWorkout("b", "B")}

	first, _ := newTestModel(t, stateDir)
	first.SetWorkouts(workouts)
	_, ok := first.SelectWorkout("b")
	require.True(t, ok)
	assert.FileExists(t, filepath.Join(stateDir, "ui_state.json"))

	second, _ := newTestModel(t, stateDir)
	second.SetWorkouts(workouts)
	selected, ok := second.GetSelectedWorkout()
	require.True(t, ok)
	assert.Equal(t, "b", selected.ID)
}

func TestUIModel_CorruptStateFileIgnored(t *testing.T) {
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "ui_state.json"), []byte("{not json"), 0o644))

	model, _ := newTestModel(t, stateDir)
	model.SetWorkouts([]interval.WorkoutConfig{namedWorkout("a", "A")})

	selected, ok := model.GetSelectedWorkout()
	require.True(t, ok)
	assert.Equal(t, "a", selected.ID)
}

func TestUIModel_WorkoutListIsCopied(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())
	workouts := []interval.WorkoutConfig{namedWorkout("a", "A")}
	model.SetWorkouts(workouts)

	workouts[0].Name = "changed"
	list := model.GetWorkoutList()
	list.Workouts[0].Name = "also changed"

	assert.Equal(t, "A", model.GetWorkoutList().Workouts[0].Name)
}

func TestUIModel_Timer(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())
	assert.Equal(t, interval.PhaseStopped, model.GetTimer().Phase)

	ch := make(chan interval.Snapshot, 4)
	unregister := model.ListenToTimer(ch)
	defer unregister()
	assert.Empty(t, ch, "nothing published yet")

	model.SetTimer(interval.Snapshot{Phase: interval.PhaseExercise, TimeRemaining: 12})

	got := <-ch
	assert.Equal(t, interval.PhaseExercise, got.Phase)
	assert.Equal(t, 12, model.GetTimer().TimeRemaining)
}

func TestUIModel_LogTail(t *testing.T) {
	model, logChan := newTestModel(t, t.TempDir())

	ch := make(chan string, 16)
	unregister := model.ListenToLog(ch)
	defer unregister()

	for i := range 5 {
		logChan <- fmt.Sprintf("line %d", i)
	}
	for range 5 {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("log line not forwarded")
		}
	}

	assert.Equal(t, []string{"line 3", "line 4"}, model.GetLogTail(2))
	assert.Len(t, model.GetLogTail(100), 5)
	assert.Empty(t, model.GetLogTail(0))
}

func TestUIModel_RequestCloseApplication(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())

	ch := make(chan struct{}, 1)
	unregister := model.ListenToCloseApplication(ch)
	defer unregister()

	model.RequestCloseApplication()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("close not signalled")
	}
}
