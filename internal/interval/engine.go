package interval

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/tabata-app/internal/events"
	"github.com/lowaak/smart-trainer/tabata-app/internal/go_func_utils"
)

// CuePlayer plays audible cues. Calls must return without waiting for playback.
type CuePlayer interface {
	Prepare()
	PlayCountdown()
	PlayFanfare()
}

// WakeLock keeps the display awake while a run is active.
type WakeLock interface {
	Acquire()
	Release()
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	TickInterval time.Duration              // defaults to one second
	NewTicker    func(time.Duration) Ticker // defaults to NewTimeTicker
	Cues         CuePlayer
	WakeLock     WakeLock
	Logger       *log.Logger
}

// engineCommand represents intents sent to the engine goroutine
type engineCommand int

const (
	cmdStart engineCommand = iota
	cmdPause
	cmdResume
	cmdStop
	cmdRestart
	cmdSkip
)

var commandNames = map[engineCommand]string{
	cmdStart:   "start",
	cmdPause:   "pause",
	cmdResume:  "resume",
	cmdStop:    "stop",
	cmdRestart: "restart",
	cmdSkip:    "skip",
}

type command struct {
	kind   engineCommand
	config WorkoutConfig
	done   chan struct{}
}

// Engine drives the interval state machine from a single goroutine that owns
// the ticker, so ticks and intents never run concurrently.
type Engine struct {
	logger       *log.Logger
	cues         CuePlayer
	wakeLock     WakeLock
	tickInterval time.Duration
	ticker       Ticker

	// Run state (protected by mu)
	mu     sync.RWMutex
	state  State
	config WorkoutConfig

	updates *events.ChannelEvent[Snapshot]

	cmdChan      chan command
	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewEngine creates an Engine in the Stopped phase and starts its goroutine.
func NewEngine(opts Options) *Engine {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	if opts.Cues == nil {
		opts.Cues = noopCues{}
	}
	if opts.WakeLock == nil {
		opts.WakeLock = noopWakeLock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	e := &Engine{
		logger:       opts.Logger,
		cues:         opts.Cues,
		wakeLock:     opts.WakeLock,
		tickInterval: opts.TickInterval,
		ticker:       opts.NewTicker(opts.TickInterval),
		state:        InitialState(),
		updates:      events.NewChannelEvent[Snapshot](true),
		cmdChan:      make(chan command),
		doneChan:     make(chan struct{}),
	}

	e.wg.Add(1)
	go_func_utils.SafeGo(e.logger, e.run)

	return e
}

// Start begins a run of cfg. Ignored unless the engine is Stopped.
// Out-of-range fields are clamped.
func (e *Engine) Start(cfg WorkoutConfig) { e.send(command{kind: cmdStart, config: cfg}) }

// Pause freezes the countdown. Ignored unless a phase is ticking.
func (e *Engine) Pause() { e.send(command{kind: cmdPause}) }

// Resume continues a paused run exactly where it stopped.
func (e *Engine) Resume() { e.send(command{kind: cmdResume}) }

// Stop abandons the run from any phase and releases the wake lock.
func (e *Engine) Stop() { e.send(command{kind: cmdStop}) }

// Restart returns a Completed engine to Stopped.
func (e *Engine) Restart() { e.send(command{kind: cmdRestart}) }

// Skip ends the ready countdown and starts the first exercise.
func (e *Engine) Skip() { e.send(command{kind: cmdSkip}) }

// Snapshot returns the current state for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return newSnapshot(e.state, e.config)
}

// State returns the raw run state, including saved resume values.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Listen registers ch for a Snapshot after every tick and intent. The latest
// snapshot is sent on registration. Returns a deregistration func.
func (e *Engine) Listen(ch chan<- Snapshot) func() {
	return e.updates.Listen(ch)
}

// Shutdown stops the engine goroutine. Safe to call multiple times.
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		close(e.doneChan)
		e.wg.Wait()
		e.logger.Printf("IntervalEngine: Shutdown complete")
	})
}

// send delivers cmd to the loop and waits until it has been applied.
func (e *Engine) send(cmd command) {
	cmd.done = make(chan struct{})
	select {
	case e.cmdChan <- cmd:
	case <-e.doneChan:
		return
	}
	select {
	case <-cmd.done:
	case <-e.doneChan:
	}
}

func (e *Engine) run() {
	defer e.wg.Done()
	defer e.ticker.Stop()

	for {
		select {
		case <-e.doneChan:
			return

		case cmd := <-e.cmdChan:
			e.handleCommand(cmd)
			close(cmd.done)

		case <-e.ticker.C():
			e.handleTick()
		}
	}
}

func (e *Engine) handleCommand(cmd command) {
	e.mu.Lock()
	prev := e.state
	var next State
	var effects []Effect

	switch cmd.kind {
	case cmdStart:
		next, effects = Start(prev)
		if next.Phase != prev.Phase {
			e.config = cmd.config.Normalize()
			if e.config != cmd.config {
				e.logger.Printf("IntervalEngine: Workout '%s' clamped to valid ranges", cmd.config.Name)
			}
		}
	case cmdPause:
		next, effects = Pause(prev)
	case cmdResume:
		next, effects = Resume(prev)
	case cmdStop:
		next, effects = Stop(prev)
	case cmdRestart:
		next, effects = Restart(prev)
	case cmdSkip:
		next, effects = Skip(prev, e.config)
	}

	e.state = next
	snapshot := newSnapshot(next, e.config)
	e.mu.Unlock()

	if next == prev && len(effects) == 0 {
		e.logger.Printf("IntervalEngine: Ignoring %s while %s", commandNames[cmd.kind], prev.Phase)
	}
	e.commit(prev, next, snapshot, effects)
}

func (e *Engine) handleTick() {
	e.mu.Lock()
	prev := e.state
	if !prev.Phase.Ticking() {
		// Tick raced a pause or stop
		e.mu.Unlock()
		return
	}
	next, effects := Tick(prev, e.config)
	e.state = next
	snapshot := newSnapshot(next, e.config)
	e.mu.Unlock()

	e.commit(prev, next, snapshot, effects)
}

// commit runs after the new state is in place: it re-arms the ticker,
// publishes the snapshot and then performs the side effects.
func (e *Engine) commit(prev, next State, snapshot Snapshot, effects []Effect) {
	switch {
	case !next.Phase.Ticking():
		if prev.Phase.Ticking() {
			e.ticker.Stop()
		}
	case transitioned(prev, next):
		e.ticker.Reset(e.tickInterval)
	}

	if transitioned(prev, next) {
		e.logger.Printf("IntervalEngine: %s -> %s (round %d/%d, exercise %d/%d, %ds)",
			prev.Phase, next.Phase,
			next.CurrentRound, snapshot.Workout.RoundCount,
			next.CurrentExercise, snapshot.Workout.ExerciseCount,
			next.TimeRemaining)
	}

	e.updates.Notify(snapshot)
	e.dispatch(effects)
}

func (e *Engine) dispatch(effects []Effect) {
	for _, effect := range effects {
		switch effect {
		case EffectPrepareAudio:
			e.cues.Prepare()
		case EffectAcquireWakeLock:
			e.wakeLock.Acquire()
		case EffectReleaseWakeLock:
			e.wakeLock.Release()
		case EffectCountdownCue:
			e.cues.PlayCountdown()
		case EffectCompletionCue:
			e.logger.Printf("IntervalEngine: All rounds complete")
			e.cues.PlayFanfare()
		}
	}
}

func transitioned(prev, next State) bool {
	return prev.Phase != next.Phase ||
		prev.CurrentRound != next.CurrentRound ||
		prev.CurrentExercise != next.CurrentExercise
}

type noopCues struct{}

func (noopCues) Prepare()       {}
func (noopCues) PlayCountdown() {}
func (noopCues) PlayFanfare()   {}

type noopWakeLock struct{}

func (noopWakeLock) Acquire() {}
func (noopWakeLock) Release() {}
