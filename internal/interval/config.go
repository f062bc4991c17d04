package interval

import (
	"fmt"
	"time"
)

// Accepted ranges for WorkoutConfig fields
const (
	MinExerciseDuration  = 1
	MaxExerciseDuration  = 180
	MinRestDuration      = 0
	MaxRestDuration      = 60
	MinExerciseCount     = 1
	MaxExerciseCount     = 20
	MinRoundCount        = 1
	MaxRoundCount        = 25
	MinRoundRestDuration = 0
	MaxRoundRestDuration = 180
)

// ReadyCountdown is the fixed length in seconds of the Ready phase
const ReadyCountdown = 5

// WorkoutConfig describes one workout. Durations are whole seconds.
type WorkoutConfig struct {
	ID                string
	Name              string
	ExerciseDuration  int
	RestDuration      int
	ExerciseCount     int
	RoundCount        int
	RoundRestDuration int
}

// DefaultWorkoutConfig returns the classic 8 x 20s/10s tabata.
func DefaultWorkoutConfig() WorkoutConfig {
	return WorkoutConfig{
		ID:                "default",
		Name:              "Classic Tabata",
		ExerciseDuration:  20,
		RestDuration:      10,
		ExerciseCount:     8,
		RoundCount:        1,
		RoundRestDuration: 60,
	}
}

// RangeError reports a WorkoutConfig field outside its accepted range.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, e.Min, e.Max, e.Value)
}

type fieldRange struct {
	name     string
	value    *int
	min, max int
}

func (c *WorkoutConfig) ranges() []fieldRange {
	return []fieldRange{
		{"exercise_duration", &c.ExerciseDuration, MinExerciseDuration, MaxExerciseDuration},
		{"rest_duration", &c.RestDuration, MinRestDuration, MaxRestDuration},
		{"exercise_count", &c.ExerciseCount, MinExerciseCount, MaxExerciseCount},
		{"round_count", &c.RoundCount, MinRoundCount, MaxRoundCount},
		{"round_rest_duration", &c.RoundRestDuration, MinRoundRestDuration, MaxRoundRestDuration},
	}
}

// Validate returns a *RangeError for the first field outside its range.
func (c WorkoutConfig) Validate() error {
	for _, r := range c.ranges() {
		if *r.value < r.min || *r.value > r.max {
			return &RangeError{Field: r.name, Value: *r.value, Min: r.min, Max: r.max}
		}
	}
	return nil
}

// Normalize returns a copy with every field clamped into its range.
func (c WorkoutConfig) Normalize() WorkoutConfig {
	for _, r := range c.ranges() {
		if *r.value < r.min {
			*r.value = r.min
		} else if *r.value > r.max {
			*r.value = r.max
		}
	}
	return c
}

// TotalDuration is the wall-clock length of a full run, ready countdown included.
func (c WorkoutConfig) TotalDuration() time.Duration {
	n := c.Normalize()
	perRound := n.ExerciseCount*n.ExerciseDuration + (n.ExerciseCount-1)*n.RestDuration
	total := ReadyCountdown + n.RoundCount*perRound + (n.RoundCount-1)*n.RoundRestDuration
	return time.Duration(total) * time.Second
}
