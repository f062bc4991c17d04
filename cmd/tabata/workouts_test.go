package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
	"github.com/lowaak/smart-trainer/tabata-app/internal/workouts"
)

// runCLI runs the root command against a workouts file in a temp state dir
func runCLI(t *testing.T, workoutsFile string, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--workouts", workoutsFile}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestWorkoutsCommand_ListSeedsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.yaml")

	out, err := runCLI(t, path, "workouts", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Classic Tabata")
	assert.Contains(t, out, "3m55s")
	assert.FileExists(t, path)
}

func TestWorkoutsCommand_AddEditDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.yaml")

	out, err := runCLI(t, path, "workouts", "add", "--name", "Burpees", "--exercise", "30", "--rounds", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Burpees")

	store, err := workouts.Open(path, nil)
	require.NoError(t, err)
	list := store.List()
	require.Len(t, list, 2)
	added := list[1]
	assert.Equal(t, 30, added.ExerciseDuration)
	assert.Equal(t, 3, added.RoundCount)
	assert.Equal(t, 10, added.RestDuration, "unset flags keep defaults")

	out, err = runCLI(t, path, "workouts", "edit", added.ID, "--rest", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Rest:        5s")
	assert.Contains(t, out, "Exercise:    30s")

	out, err = runCLI(t, path, "workouts", "show", added.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Name:        Burpees")

	_, err = runCLI(t, path, "workouts", "delete", added.ID)
	require.NoError(t, err)

	_, err = runCLI(t, path, "workouts", "delete", "default")
	assert.ErrorIs(t, err, workouts.ErrLastWorkout)
}

func TestWorkoutsCommand_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.yaml")

	_, err := runCLI(t, path, "workouts", "show", "nope")
	assert.ErrorIs(t, err, workouts.ErrNotFound)

	_, err = runCLI(t, path, "workouts", "add", "--rest", "61")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "rest_duration"))

	_, err = runCLI(t, path, "workouts", "add", "--name", " ")
	assert.ErrorIs(t, err, workouts.ErrInvalidName)
}

func TestApplyWorkoutFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerWorkoutFlags(fs)
	require.NoError(t, fs.Parse([]string{"--exercises", "4", "--round-rest", "0"}))

	w := interval.WorkoutConfig{Name: "Keep", ExerciseDuration: 40, ExerciseCount: 8, RoundRestDuration: 60}
	require.NoError(t, applyWorkoutFlags(&w, fs))

	assert.Equal(t, "Keep", w.Name)
	assert.Equal(t, 40, w.ExerciseDuration)
	assert.Equal(t, 4, w.ExerciseCount)
	assert.Equal(t, 0, w.RoundRestDuration)
}
