package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
	"github.com/lowaak/smart-trainer/tabata-app/internal/workouts"
)

// Flag names for workout fields
const (
	flagName      = "name"
	flagExercise  = "exercise"
	flagRest      = "rest"
	flagExercises = "exercises"
	flagRounds    = "rounds"
	flagRoundRest = "round-rest"
)

func newWorkoutsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "Manage saved workouts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved workouts",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, store *workouts.Store, _ []string) error {
				return printWorkoutTable(cmd.OutOrStdout(), store.List())
			}),
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one workout",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, store *workouts.Store, args []string) error {
				w, err := store.Get(args[0])
				if err != nil {
					return err
				}
				printWorkout(cmd.OutOrStdout(), w)
				return nil
			}),
		},
		newAddCommand(),
		newEditCommand(),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a workout",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, store *workouts.Store, args []string) error {
				if err := store.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a workout",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, store *workouts.Store, _ []string) error {
			w := workouts.NewWorkout()
			if err := applyWorkoutFlags(&w, cmd.Flags()); err != nil {
				return err
			}
			created, err := store.Create(w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", created.Name, created.ID)
			return nil
		}),
	}
	registerWorkoutFlags(cmd.Flags())
	return cmd
}

func newEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a workout; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, store *workouts.Store, args []string) error {
			w, err := store.Get(args[0])
			if err != nil {
				return err
			}
			if err := applyWorkoutFlags(&w, cmd.Flags()); err != nil {
				return err
			}
			if err := store.Update(w); err != nil {
				return err
			}
			printWorkout(cmd.OutOrStdout(), w)
			return nil
		}),
	}
	registerWorkoutFlags(cmd.Flags())
	return cmd
}

// withStore loads the config and opens the workout store before running fn
func withStore(fn func(cmd *cobra.Command, store *workouts.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, closer := newLogger(cfg, nil)
		defer closer.Close()

		store, err := workouts.Open(cfg.WorkoutsFile, logger)
		if err != nil {
			return fmt.Errorf("open workouts: %w", err)
		}
		return fn(cmd, store, args)
	}
}

func registerWorkoutFlags(fs *pflag.FlagSet) {
	d := interval.DefaultWorkoutConfig()
	fs.String(flagName, "New Workout", "workout name")
	fs.Int(flagExercise, d.ExerciseDuration, fmt.Sprintf("exercise duration in seconds (%d-%d)", interval.MinExerciseDuration, interval.MaxExerciseDuration))
	fs.Int(flagRest, d.RestDuration, fmt.Sprintf("rest between exercises in seconds (%d-%d)", interval.MinRestDuration, interval.MaxRestDuration))
	fs.Int(flagExercises, d.ExerciseCount, fmt.Sprintf("exercises per round (%d-%d)", interval.MinExerciseCount, interval.MaxExerciseCount))
	fs.Int(flagRounds, d.RoundCount, fmt.Sprintf("number of rounds (%d-%d)", interval.MinRoundCount, interval.MaxRoundCount))
	fs.Int(flagRoundRest, d.RoundRestDuration, fmt.Sprintf("rest between rounds in seconds (%d-%d)", interval.MinRoundRestDuration, interval.MaxRoundRestDuration))
}

// applyWorkoutFlags copies the explicitly set flags onto w
func applyWorkoutFlags(w *interval.WorkoutConfig, fs *pflag.FlagSet) error {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if changed[flagName] {
		name, err := fs.GetString(flagName)
		if err != nil {
			return err
		}
		w.Name = name
	}

	ints := map[string]*int{
		flagExercise:  &w.ExerciseDuration,
		flagRest:      &w.RestDuration,
		flagExercises: &w.ExerciseCount,
		flagRounds:    &w.RoundCount,
		flagRoundRest: &w.RoundRestDuration,
	}
	for name, dst := range ints {
		if !changed[name] {
			continue
		}
		v, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func printWorkoutTable(out io.Writer, list []interval.WorkoutConfig) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXERCISE\tREST\tEXERCISES\tROUNDS\tROUND REST\tTOTAL")
	for _, w := range list {
		fmt.Fprintf(tw, "%s\t%s\t%ds\t%ds\t%d\t%d\t%ds\t%s\n",
			w.ID, w.Name, w.ExerciseDuration, w.RestDuration, w.ExerciseCount, w.RoundCount, w.RoundRestDuration, w.TotalDuration())
	}
	return tw.Flush()
}

func printWorkout(out io.Writer, w interval.WorkoutConfig) {
	fmt.Fprintf(out, "ID:          %s\n", w.ID)
	fmt.Fprintf(out, "Name:        %s\n", w.Name)
	fmt.Fprintf(out, "Exercise:    %ds\n", w.ExerciseDuration)
	fmt.Fprintf(out, "Rest:        %ds\n", w.RestDuration)
	fmt.Fprintf(out, "Exercises:   %d\n", w.ExerciseCount)
	fmt.Fprintf(out, "Rounds:      %d\n", w.RoundCount)
	fmt.Fprintf(out, "Round rest:  %ds\n", w.RoundRestDuration)
	fmt.Fprintf(out, "Total:       %s\n", w.TotalDuration())
}
