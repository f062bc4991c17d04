package trainer

import (
	"errors"
	"log"
	"slices"

	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
	"github.com/lowaak/smart-trainer/tabata-app/internal/workouts"
)

// WorkoutStore is the persistence the controller edits workouts through
type WorkoutStore interface {
	List() []interval.WorkoutConfig
	Create(w interval.WorkoutConfig) (interval.WorkoutConfig, error)
	Update(w interval.WorkoutConfig) error
	Delete(id string) error
	OnChange(fn func([]interval.WorkoutConfig)) func()
}

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model           *UIModel
	workoutManager  *WorkoutManager
	store           WorkoutStore
	logger          *log.Logger
	unregisterStore func()
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(model *UIModel, workoutManager *WorkoutManager, store WorkoutStore, logger *log.Logger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if workoutManager == nil {
		panic("UIController: workoutManager cannot be nil")
	}
	if store == nil {
		panic("UIController: store cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}

	c := &UIController{
		model:          model,
		workoutManager: workoutManager,
		store:          store,
		logger:         logger,
	}

	c.onWorkoutsChanged(store.List())
	c.unregisterStore = store.OnChange(c.onWorkoutsChanged)

	return c
}

// onWorkoutsChanged publishes the list and keeps the loaded workout in sync
// with edits made while no run is in progress
func (c *UIController) onWorkoutsChanged(list []interval.WorkoutConfig) {
	c.model.SetWorkouts(list)

	loaded, ok := c.workoutManager.Workout()
	if !ok || c.workoutManager.Snapshot().Phase != interval.PhaseStopped {
		return
	}
	i := slices.IndexFunc(list, func(w interval.WorkoutConfig) bool { return w.ID == loaded.ID })
	if i >= 0 {
		if list[i] != loaded {
			c.workoutManager.SetWorkout(list[i])
		}
		return
	}

	// The loaded workout was deleted
	if selected, ok := c.model.GetSelectedWorkout(); ok {
		c.logger.Printf("Workout %s was removed, loading %s", loaded.Name, selected.Name)
		c.workoutManager.SetWorkout(selected)
	}
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Printf("Switching to %s mode", info.DisplayName)
	}
	switch mode {
	case UIModeTimer:
		if _, ok := c.workoutManager.Workout(); !ok {
			selected, ok := c.model.GetSelectedWorkout()
			if !ok {
				c.logger.Printf("No workout selected - pick one in Workout Selection mode (press 1)")
				return
			}
			c.workoutManager.SetWorkout(selected)
		}
	case UIModeWorkoutSelection:
		// Leaving the timer abandons the run
		if c.workoutManager.Snapshot().Phase != interval.PhaseStopped {
			c.workoutManager.Stop()
		}
	}
	c.model.SetMode(mode)
}

// --- Workout Selection Methods ---

// OnWorkoutSelected loads the workout at index and opens the timer
func (c *UIController) OnWorkoutSelected(index int) {
	list := c.model.GetWorkoutList()
	if index < 0 || index >= len(list.Workouts) {
		c.logger.Printf("Invalid workout index: %d", index)
		return
	}

	workout, ok := c.model.SelectWorkout(list.Workouts[index].ID)
	if !ok {
		return
	}
	c.logger.Printf("Workout selected: %s", workout.Name)
	if !c.workoutManager.SetWorkout(workout) {
		return
	}
	c.model.SetMode(UIModeTimer)
}

// NewWorkout returns the template the editor starts from when adding
func (c *UIController) NewWorkout() interval.WorkoutConfig {
	return workouts.NewWorkout()
}

// SaveWorkout creates the workout, or updates it when its ID already exists
func (c *UIController) SaveWorkout(workout interval.WorkoutConfig) error {
	exists := slices.ContainsFunc(c.store.List(), func(w interval.WorkoutConfig) bool { return w.ID == workout.ID })
	if exists {
		if err := c.store.Update(workout); err != nil {
			c.logger.Printf("Failed to save workout: %v", err)
			return err
		}
		return nil
	}

	created, err := c.store.Create(workout)
	if err != nil {
		c.logger.Printf("Failed to create workout: %v", err)
		return err
	}
	c.model.SelectWorkout(created.ID)
	return nil
}

// DeleteWorkout removes the workout at index
func (c *UIController) DeleteWorkout(index int) {
	list := c.model.GetWorkoutList()
	if index < 0 || index >= len(list.Workouts) {
		c.logger.Printf("Invalid workout index: %d", index)
		return
	}

	err := c.store.Delete(list.Workouts[index].ID)
	if errors.Is(err, workouts.ErrLastWorkout) {
		c.logger.Printf("Cannot delete the only workout")
		return
	}
	if err != nil {
		c.logger.Printf("Failed to delete workout: %v", err)
	}
}

// --- Timer Methods ---

// ToggleWorkout starts, pauses, resumes or resets the run based on its phase
func (c *UIController) ToggleWorkout() {
	if _, ok := c.workoutManager.Workout(); !ok {
		c.logger.Printf("No workout loaded - select one in Workout Selection mode (press 1)")
		return
	}
	c.workoutManager.Toggle()
}

// SkipReady starts the first exercise without waiting out the countdown
func (c *UIController) SkipReady() {
	c.workoutManager.Skip()
}

// StopWorkout abandons the run
func (c *UIController) StopWorkout() {
	c.workoutManager.Stop()
}

// BackToSelection abandons the run and returns to the workout list
func (c *UIController) BackToSelection() {
	c.OnModeChange(UIModeWorkoutSelection)
}

// Shutdown stops the workout manager and cleans up resources
func (c *UIController) Shutdown() {
	c.unregisterStore()
	c.workoutManager.Shutdown()
}
