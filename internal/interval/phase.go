package interval

// Phase is one discrete stage of a workout run
type Phase int

const (
	PhaseStopped   Phase = iota // No run in progress
	PhaseReady                  // Fixed countdown before the first exercise
	PhaseExercise               // Work interval
	PhaseRest                   // Rest between exercises of a round
	PhaseRoundRest              // Rest between rounds
	PhasePaused                 // Countdown frozen, resume target saved in State
	PhaseCompleted              // All rounds finished
)

var phaseNames = map[Phase]string{
	PhaseStopped:   "stopped",
	PhaseReady:     "ready",
	PhaseExercise:  "exercise",
	PhaseRest:      "rest",
	PhaseRoundRest: "round_rest",
	PhasePaused:    "paused",
	PhaseCompleted: "completed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Ticking reports whether the countdown advances while in this phase.
// Only ticking phases may be paused.
func (p Phase) Ticking() bool {
	switch p {
	case PhaseReady, PhaseExercise, PhaseRest, PhaseRoundRest:
		return true
	default:
		return false
	}
}
