// Package workouts persists the user's list of workout definitions as YAML.
package workouts

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lowaak/smart-trainer/tabata-app/internal/events"
	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
)

var (
	ErrNotFound    = errors.New("workout not found")
	ErrLastWorkout = errors.New("at least one workout must remain")
	ErrInvalidName = errors.New("workout name must not be blank")
)

const newWorkoutName = "New Workout"

type yamlWorkout struct {
	ID                string `yaml:"id"`
	Name              string `yaml:"name"`
	ExerciseDuration  int    `yaml:"exercise_duration"`
	RestDuration      int    `yaml:"rest_duration"`
	ExerciseCount     int    `yaml:"exercise_count"`
	RoundCount        int    `yaml:"round_count"`
	RoundRestDuration int    `yaml:"round_rest_duration"`
}

type yamlFile struct {
	Workouts []yamlWorkout `yaml:"workouts"`
}

// Store keeps the workout list in memory and writes every change through to
// the YAML file.
type Store struct {
	path   string
	logger *log.Logger
	newID  func() string

	mu       sync.RWMutex
	workouts []interval.WorkoutConfig

	changedEvent *events.CallbackEvent[[]interval.WorkoutConfig]
}

// Open loads the store at path. A missing or empty file is seeded with the
// default workout.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{
		path:         path,
		logger:       logger,
		newID:        uuid.NewString,
		changedEvent: events.NewCallbackEvent[[]interval.WorkoutConfig](false),
	}

	workouts, err := s.read()
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		logger.Printf("WorkoutStore: Seeding %s with the default workout", path)
		workouts = []interval.WorkoutConfig{interval.DefaultWorkoutConfig()}
		if err := s.write(workouts); err != nil {
			return nil, err
		}
	}
	s.workouts = workouts
	return s, nil
}

// NewWorkout returns an unsaved workout with the default timings and a fresh id.
func NewWorkout() interval.WorkoutConfig {
	w := interval.DefaultWorkoutConfig()
	w.ID = uuid.NewString()
	w.Name = newWorkoutName
	return w
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// List returns a copy of the workouts in file order.
func (s *Store) List() []interval.WorkoutConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.workouts)
}

// Get returns the workout with id or ErrNotFound.
func (s *Store) Get(id string) (interval.WorkoutConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return interval.WorkoutConfig{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.workouts[i], nil
}

// Create validates w, assigns an id if it has none and appends it.
func (s *Store) Create(w interval.WorkoutConfig) (interval.WorkoutConfig, error) {
	w, err := prepare(w)
	if err != nil {
		return interval.WorkoutConfig{}, err
	}

	s.mu.Lock()
	if w.ID == "" || s.indexOf(w.ID) >= 0 {
		w.ID = s.newID()
	}
	next := append(slices.Clone(s.workouts), w)
	err = s.commitLocked(next)
	s.mu.Unlock()
	if err != nil {
		return interval.WorkoutConfig{}, err
	}

	s.logger.Printf("WorkoutStore: Created workout '%s' (%s)", w.Name, w.ID)
	s.changedEvent.Notify(s.List())
	return w, nil
}

// Update replaces the workout with the same id.
func (s *Store) Update(w interval.WorkoutConfig) error {
	w, err := prepare(w)
	if err != nil {
		return err
	}

	s.mu.Lock()
	i := s.indexOf(w.ID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, w.ID)
	}
	next := slices.Clone(s.workouts)
	next[i] = w
	err = s.commitLocked(next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Printf("WorkoutStore: Updated workout '%s' (%s)", w.Name, w.ID)
	s.changedEvent.Notify(s.List())
	return nil
}

// Delete removes the workout with id. The last workout cannot be deleted.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if len(s.workouts) <= 1 {
		s.mu.Unlock()
		return ErrLastWorkout
	}
	next := slices.Delete(slices.Clone(s.workouts), i, i+1)
	err := s.commitLocked(next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Printf("WorkoutStore: Deleted workout %s", id)
	s.changedEvent.Notify(s.List())
	return nil
}

// Reload re-reads the file and notifies listeners when its content differs
// from what is in memory. An emptied file keeps the current list.
func (s *Store) Reload() error {
	workouts, err := s.read()
	if err != nil {
		return err
	}
	if len(workouts) == 0 {
		s.logger.Printf("WorkoutStore: Ignoring empty %s", s.path)
		return nil
	}

	s.mu.Lock()
	if slices.Equal(s.workouts, workouts) {
		s.mu.Unlock()
		return nil
	}
	s.workouts = workouts
	s.mu.Unlock()

	s.logger.Printf("WorkoutStore: Reloaded %d workouts from %s", len(workouts), s.path)
	s.changedEvent.Notify(s.List())
	return nil
}

// OnChange registers fn to be called with the new list after every change.
// Returns a deregistration func.
func (s *Store) OnChange(fn func([]interval.WorkoutConfig)) func() {
	return s.changedEvent.Listen(fn)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.workouts, func(w interval.WorkoutConfig) bool {
		return w.ID == id
	})
}

func (s *Store) commitLocked(next []interval.WorkoutConfig) error {
	if err := s.write(next); err != nil {
		return err
	}
	s.workouts = next
	return nil
}

func prepare(w interval.WorkoutConfig) (interval.WorkoutConfig, error) {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return w, ErrInvalidName
	}
	if err := w.Validate(); err != nil {
		return w, fmt.Errorf("invalid workout '%s': %w", w.Name, err)
	}
	return w, nil
}

func (s *Store) read() ([]interval.WorkoutConfig, error) {
	rawData, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workouts file: %w", err)
	}

	var fileData yamlFile
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return nil, fmt.Errorf("parse workouts yaml: %w", err)
	}

	workouts := make([]interval.WorkoutConfig, 0, len(fileData.Workouts))
	for _, entry := range fileData.Workouts {
		w := fromYAML(entry)
		if strings.TrimSpace(w.Name) == "" {
			s.logger.Printf("WorkoutStore: Skipping workout %s without a name", w.ID)
			continue
		}
		if err := w.Validate(); err != nil {
			s.logger.Printf("WorkoutStore: Clamping workout '%s': %v", w.Name, err)
			w = w.Normalize()
		}
		if w.ID == "" {
			w.ID = s.newID()
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

func (s *Store) write(workouts []interval.WorkoutConfig) error {
	fileData := yamlFile{Workouts: make([]yamlWorkout, 0, len(workouts))}
	for _, w := range workouts {
		fileData.Workouts = append(fileData.Workouts, toYAML(w))
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal workouts yaml: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create workouts directory: %w", err)
	}

	// Write to a temp file and rename so watchers never see a partial file
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp workouts file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(serialized); err != nil {
		tmp.Close()
		return fmt.Errorf("write workouts file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write workouts file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace workouts file: %w", err)
	}
	return nil
}

func fromYAML(y yamlWorkout) interval.WorkoutConfig {
	return interval.WorkoutConfig{
		ID:                y.ID,
		Name:              y.Name,
		ExerciseDuration:  y.ExerciseDuration,
		RestDuration:      y.RestDuration,
		ExerciseCount:     y.ExerciseCount,
		RoundCount:        y.RoundCount,
		RoundRestDuration: y.RoundRestDuration,
	}
}

func toYAML(w interval.WorkoutConfig) yamlWorkout {
	return yamlWorkout{
		ID:                w.ID,
		Name:              w.Name,
		ExerciseDuration:  w.ExerciseDuration,
		RestDuration:      w.RestDuration,
		ExerciseCount:     w.ExerciseCount,
		RoundCount:        w.RoundCount,
		RoundRestDuration: w.RoundRestDuration,
	}
}
