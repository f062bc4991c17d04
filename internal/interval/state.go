package interval

// State is the mutable run state of the engine.
// ResumePhase and ResumeTimeRemaining are only meaningful while Phase is PhasePaused.
type State struct {
	Phase               Phase
	CurrentRound        int
	CurrentExercise     int
	TimeRemaining       int
	TotalTimeForPhase   int
	ResumePhase         Phase
	ResumeTimeRemaining int
}

// InitialState is the state of an engine with no run in progress.
func InitialState() State {
	return State{
		Phase:           PhaseStopped,
		CurrentRound:    1,
		CurrentExercise: 1,
	}
}

// Snapshot is what presentation renders after each tick or transition.
type Snapshot struct {
	Phase             Phase
	CurrentRound      int
	CurrentExercise   int
	TimeRemaining     int
	TotalTimeForPhase int
	Workout           WorkoutConfig
}

func newSnapshot(s State, cfg WorkoutConfig) Snapshot {
	return Snapshot{
		Phase:             s.Phase,
		CurrentRound:      s.CurrentRound,
		CurrentExercise:   s.CurrentExercise,
		TimeRemaining:     s.TimeRemaining,
		TotalTimeForPhase: s.TotalTimeForPhase,
		Workout:           cfg,
	}
}

// Progress returns the elapsed fraction of the current phase in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.TotalTimeForPhase <= 0 {
		return 0
	}
	progress := float64(s.TotalTimeForPhase-s.TimeRemaining) / float64(s.TotalTimeForPhase)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
