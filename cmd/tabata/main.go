package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/lowaak/smart-trainer/tabata-app/internal/applog"
	"github.com/lowaak/smart-trainer/tabata-app/internal/cliconfig"
	"github.com/lowaak/smart-trainer/tabata-app/internal/cue"
	"github.com/lowaak/smart-trainer/tabata-app/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
	"github.com/lowaak/smart-trainer/tabata-app/internal/trainer"
	"github.com/lowaak/smart-trainer/tabata-app/internal/wakelock"
	"github.com/lowaak/smart-trainer/tabata-app/internal/workouts"
)

const longHelp = `
Terminal tabata / HIIT interval timer.

Pick a workout, press Space and follow the phases: a short ready countdown,
then work and rest intervals for every exercise and round. Beeps mark the
last three seconds of each interval and a fanfare plays at the end. The
display is kept awake while a workout runs.

Workouts are stored as YAML and can be managed from the TUI or with the
"workouts" command. Edits to the file are picked up while the timer runs.`

var exampleUsage = strings.TrimSpace(`
  tabata
  tabata --no-audio --workouts ~/gym/workouts.yaml
  tabata workouts add --name "Burpees" --exercise 30 --rest 15 --exercises 6 --rounds 3
`)

// Size of the buffer between the logger and the UI log pane
const uiLogBufferSize = 1000

const wakeLockReason = "Workout in progress"

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           cliconfig.AppName,
		Short:         "Terminal tabata / HIIT interval timer",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
	}
	cliconfig.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newWorkoutsCommand())
	return root
}

// loadConfig resolves defaults, the config file, TABATA_* env vars and flags
func loadConfig(cmd *cobra.Command) (cliconfig.Config, error) {
	fs := cmd.Flags()
	v := cliconfig.New()
	if err := cliconfig.BindFlags(v, fs); err != nil {
		return cliconfig.Config{}, err
	}

	path, err := fs.GetString(cliconfig.FlagConfig)
	if err != nil {
		return cliconfig.Config{}, err
	}
	cfg, err := cliconfig.Load(v, path)
	if err != nil {
		return cliconfig.Config{}, err
	}
	cliconfig.ApplyFlags(&cfg, fs)

	if err := os.MkdirAll(cfg.StateDir, 0755); err != nil {
		return cliconfig.Config{}, fmt.Errorf("create state dir: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg cliconfig.Config, uiLogChan chan<- string) (*log.Logger, io.Closer) {
	return applog.New(applog.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}, uiLogChan)
}

func runTUI(cfg cliconfig.Config) error {
	uiLogChan := make(chan string, uiLogBufferSize)
	logger, logCloser := newLogger(cfg, uiLogChan)
	defer logCloser.Close()

	logger.Printf("Starting %s %s (config: workouts=%s)", cliconfig.AppName, getVersion(), cfg.WorkoutsFile)

	store, err := workouts.Open(cfg.WorkoutsFile, logger)
	if err != nil {
		return fmt.Errorf("open workouts: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcherDone := make(chan struct{})
	watcher := workouts.NewWatcher(store)
	go_func_utils.SafeGo(logger, func() {
		defer close(watcherDone)
		if err := watcher.Run(ctx); err != nil {
			logger.Printf("WorkoutWatcher: %v", err)
		}
	})

	var opener cue.Opener
	if cfg.Audio.Enabled {
		opener = cue.OtoOpener(cfg.Audio.SampleRate, logger)
	}
	emitter := cue.NewEmitter(logger, opener)

	var inhibitor wakelock.Inhibitor
	if cfg.WakeLock.Enabled {
		if inhibitor, err = wakelock.NewInhibitor(cliconfig.AppName); err != nil {
			logger.Printf("WakeLock: %v", err)
			inhibitor = nil
		}
	}
	wakeLock := wakelock.NewManager(logger, inhibitor, wakeLockReason)

	engine := interval.NewEngine(interval.Options{
		Cues:     emitter,
		WakeLock: wakeLock,
		Logger:   logger,
	})

	model := trainer.NewUIModel(logger, uiLogChan, cfg.StateDir)
	workoutManager := trainer.NewWorkoutManager(model, engine, logger)
	controller := trainer.NewUIController(model, workoutManager, store, logger)

	app := tview.NewApplication()
	view := trainer.NewCursesUIView(logger, app, model)
	baseView := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   view,
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})

	// SIGTERM, or SIGINT outside the terminal's raw mode, closes the UI
	go_func_utils.SafeGo(logger, func() {
		<-ctx.Done()
		model.RequestCloseApplication()
	})

	runErr := baseView.Run()

	logger.Println("Shutting down")
	baseView.Shutdown()
	controller.Shutdown()
	engine.Shutdown()
	model.Shutdown()
	cancel()
	<-watcherDone
	if err := wakeLock.Close(); err != nil {
		logger.Printf("WakeLock: close: %v", err)
	}
	if err := emitter.Close(); err != nil {
		logger.Printf("CueEmitter: close: %v", err)
	}
	logger.Println("Shutdown complete")

	return runErr
}
