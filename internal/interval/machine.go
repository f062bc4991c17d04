package interval

// Effect is a side effect requested by a transition. The engine dispatches
// effects after the new state has been published.
type Effect int

const (
	EffectPrepareAudio Effect = iota + 1
	EffectAcquireWakeLock
	EffectReleaseWakeLock
	EffectCountdownCue
	EffectCompletionCue
)

var effectNames = map[Effect]string{
	EffectPrepareAudio:    "prepare_audio",
	EffectAcquireWakeLock: "acquire_wake_lock",
	EffectReleaseWakeLock: "release_wake_lock",
	EffectCountdownCue:    "countdown_cue",
	EffectCompletionCue:   "completion_cue",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return "unknown"
}

// WarningAt is the pre-decrement remaining time at which the countdown cue fires,
// so its three beeps land on 3, 2 and 1.
const WarningAt = 4

// Every function below is total: a call that is not valid from the current
// phase returns the state unchanged and no effects.

// Start begins a run from Stopped with the ready countdown.
func Start(s State) (State, []Effect) {
	if s.Phase != PhaseStopped {
		return s, nil
	}
	next := InitialState()
	next.Phase = PhaseReady
	next.TimeRemaining = ReadyCountdown
	next.TotalTimeForPhase = ReadyCountdown
	return next, []Effect{EffectPrepareAudio, EffectAcquireWakeLock}
}

// Tick advances the countdown by one second.
func Tick(s State, cfg WorkoutConfig) (State, []Effect) {
	if !s.Phase.Ticking() {
		return s, nil
	}
	if s.TimeRemaining > 1 {
		var effects []Effect
		if s.TimeRemaining == WarningAt {
			effects = append(effects, EffectCountdownCue)
		}
		s.TimeRemaining--
		return s, effects
	}
	return advance(s, cfg.Normalize())
}

func advance(s State, cfg WorkoutConfig) (State, []Effect) {
	switch s.Phase {
	case PhaseReady:
		return enter(s, PhaseExercise, cfg.ExerciseDuration), nil

	case PhaseExercise:
		if s.CurrentExercise < cfg.ExerciseCount {
			if cfg.RestDuration > 0 {
				return enter(s, PhaseRest, cfg.RestDuration), nil
			}
			s.CurrentExercise++
			return enter(s, PhaseExercise, cfg.ExerciseDuration), nil
		}
		if s.CurrentRound < cfg.RoundCount {
			s.CurrentRound++
			s.CurrentExercise = 1
			if cfg.RoundRestDuration > 0 {
				return enter(s, PhaseRoundRest, cfg.RoundRestDuration), nil
			}
			return enter(s, PhaseExercise, cfg.ExerciseDuration), nil
		}
		s.Phase = PhaseCompleted
		s.TimeRemaining = 0
		return s, []Effect{EffectCompletionCue, EffectReleaseWakeLock}

	case PhaseRest:
		s.CurrentExercise++
		return enter(s, PhaseExercise, cfg.ExerciseDuration), nil

	case PhaseRoundRest:
		return enter(s, PhaseExercise, cfg.ExerciseDuration), nil
	}
	return s, nil
}

func enter(s State, phase Phase, duration int) State {
	s.Phase = phase
	s.TimeRemaining = duration
	s.TotalTimeForPhase = duration
	return s
}

// Pause freezes a ticking phase and remembers where to resume.
func Pause(s State) (State, []Effect) {
	if !s.Phase.Ticking() {
		return s, nil
	}
	s.ResumePhase = s.Phase
	s.ResumeTimeRemaining = s.TimeRemaining
	s.Phase = PhasePaused
	return s, nil
}

// Resume restores the phase and remaining time saved by Pause.
func Resume(s State) (State, []Effect) {
	if s.Phase != PhasePaused {
		return s, nil
	}
	s.Phase = s.ResumePhase
	s.TimeRemaining = s.ResumeTimeRemaining
	s.ResumePhase = PhaseStopped
	s.ResumeTimeRemaining = 0
	return s, nil
}

// Stop abandons the run from any phase.
func Stop(State) (State, []Effect) {
	return InitialState(), []Effect{EffectReleaseWakeLock}
}

// Restart resets a completed run. The caller starts it again explicitly.
func Restart(s State) (State, []Effect) {
	if s.Phase != PhaseCompleted {
		return s, nil
	}
	return InitialState(), nil
}

// Skip ends the ready countdown early and starts the first exercise.
func Skip(s State, cfg WorkoutConfig) (State, []Effect) {
	if s.Phase != PhaseReady {
		return s, nil
	}
	return enter(s, PhaseExercise, cfg.Normalize().ExerciseDuration), nil
}
