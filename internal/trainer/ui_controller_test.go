package trainer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
	"github.com/lowaak/smart-trainer/tabata-app/internal/workouts"
)

type controllerHarness struct {
	*managerHarness
	store      *workouts.Store
	controller *UIController
}

func newControllerHarness(t *testing.T) *controllerHarness {
	t.Helper()
	h := &controllerHarness{managerHarness: newManagerHarness(t)}

	store, err := workouts.Open(filepath.Join(t.TempDir(), "workouts.yaml"), testLogger())
	require.NoError(t, err)
	h.store = store

	h.controller = NewUIController(h.model, h.manager, store, testLogger())
	t.Cleanup(h.controller.Shutdown)
	return h
}

func TestUIController_PublishesStoreWorkouts(t *testing.T) {
	h := newControllerHarness(t)

	list := h.model.GetWorkoutList()
	require.Len(t, list.Workouts, 1)
	assert.Equal(t, "Classic Tabata", list.Workouts[0].Name)
	assert.Equal(t, 0, list.Selected)
}

func TestUIController_WorkoutSelectedOpensTimer(t *testing.T) {
	h := newControllerHarness(t)

	h.controller.OnWorkoutSelected(0)

	assert.Equal(t, UIModeTimer, h.model.GetUIState().Mode)
	loaded, ok := h.manager.Workout()
	require.True(t, ok)
	assert.Equal(t, "default", loaded.ID)

	// Out of range index leaves the loaded workout alone
	h.controller.OnWorkoutSelected(5)
	loaded, ok = h.manager.Workout()
	require.True(t, ok)
	assert.Equal(t, "default", loaded.ID)
}

func TestUIController_ToggleRequiresWorkout(t *testing.T) {
	h := newControllerHarness(t)

	h.controller.ToggleWorkout()
	assert.Equal(t, interval.PhaseStopped, h.phase())

	h.controller.OnWorkoutSelected(0)
	h.controller.ToggleWorkout()
	assert.Equal(t, interval.PhaseReady, h.phase())

	h.controller.SkipReady()
	assert.Equal(t, interval.PhaseExercise, h.phase())

	h.controller.StopWorkout()
	assert.Equal(t, interval.PhaseStopped, h.phase())
}

func TestUIController_BackToSelectionStopsRun(t *testing.T) {
	h := newControllerHarness(t)
	h.controller.OnWorkoutSelected(0)
	h.controller.ToggleWorkout()
	require.Equal(t, interval.PhaseReady, h.phase())

	h.controller.BackToSelection()

	assert.Equal(t, interval.PhaseStopped, h.phase())
	assert.Equal(t, UIModeWorkoutSelection, h.model.GetUIState().Mode)
}

func TestUIController_TimerModeLoadsSelectedWorkout(t *testing.T) {
	h := newControllerHarness(t)

	h.controller.OnModeChange(UIModeTimer)

	assert.Equal(t, UIModeTimer, h.model.GetUIState().Mode)
	_, ok := h.manager.Workout()
	assert.True(t, ok)
}

func TestUIController_SaveWorkout(t *testing.T) {
	h := newControllerHarness(t)

	added := h.controller.NewWorkout()
	added.ExerciseDuration = 45
	require.NoError(t, h.controller.SaveWorkout(added))

	list := h.model.GetWorkoutList()
	require.Len(t, list.Workouts, 2)
	assert.Equal(t, 1, list.Selected, "new workout is selected")
	assert.Equal(t, 45, list.Workouts[1].ExerciseDuration)

	edited := list.Workouts[1]
	edited.Name = "Renamed"
	require.NoError(t, h.controller.SaveWorkout(edited))
	assert.Equal(t, "Renamed", h.model.GetWorkoutList().Workouts[1].Name)

	invalid := edited
	invalid.RestDuration = 61
	assert.Error(t, h.controller.SaveWorkout(invalid))

	blank := h.controller.NewWorkout()
	blank.Name = "  "
	assert.ErrorIs(t, h.controller.SaveWorkout(blank), workouts.ErrInvalidName)
}

func TestUIController_EditReloadsLoadedWorkout(t *testing.T) {
	h := newControllerHarness(t)
	h.controller.OnWorkoutSelected(0)

	edited := h.model.GetWorkoutList().Workouts[0]
	edited.ExerciseCount = 3
	require.NoError(t, h.controller.SaveWorkout(edited))

	loaded, ok := h.manager.Workout()
	require.True(t, ok)
	assert.Equal(t, 3, loaded.ExerciseCount)
}

func TestUIController_DeleteWorkout(t *testing.T) {
	h := newControllerHarness(t)

	// The only workout cannot be removed
	h.controller.DeleteWorkout(0)
	assert.Len(t, h.model.GetWorkoutList().Workouts, 1)

	require.NoError(t, h.controller.SaveWorkout(h.controller.NewWorkout()))
	h.controller.DeleteWorkout(0)

	list := h.model.GetWorkoutList()
	require.Len(t, list.Workouts, 1)
	assert.Equal(t, "New Workout", list.Workouts[0].Name)
	assert.Equal(t, 0, list.Selected)

	h.controller.DeleteWorkout(3)
	assert.Len(t, h.model.GetWorkoutList().Workouts, 1)
}

func TestUIController_DeletingLoadedWorkoutLoadsSelection(t *testing.T) {
	h := newControllerHarness(t)
	require.NoError(t, h.controller.SaveWorkout(h.controller.NewWorkout()))
	h.controller.OnWorkoutSelected(0)
	loaded, ok := h.manager.Workout()
	require.True(t, ok)
	require.Equal(t, "default", loaded.ID)

	h.controller.DeleteWorkout(0)

	loaded, ok = h.manager.Workout()
	require.True(t, ok)
	assert.Equal(t, "New Workout", loaded.Name)

	h.controller.OnModeChange(UIModeTimer)
	h.controller.ToggleWorkout()
	assert.Equal(t, "New Workout", h.engine.Snapshot().Workout.Name)
}

func TestUIController_EscapeRequestsClose(t *testing.T) {
	h := newControllerHarness(t)

	ch := make(chan struct{}, 1)
	unregister := h.model.ListenToCloseApplication(ch)
	defer unregister()

	h.controller.OnEscapeKey()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("close not signalled")
	}
}
