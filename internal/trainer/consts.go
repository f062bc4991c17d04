package trainer

import "github.com/lowaak/smart-trainer/tabata-app/internal/interval"

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeWorkoutSelection UIMode = iota // Workout picker and management
	UIModeTimer                          // Countdown for the selected workout
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode (1-9)
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeWorkoutSelection, DisplayName: "Workout Selection", KeyBinding: '1'},
	{Mode: UIModeTimer, DisplayName: "Timer", KeyBinding: '2'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// PhaseStyle is how a phase is presented on the timer screen
type PhaseStyle struct {
	Label string
	Color string // tview color tag value
}

var phaseStyles = map[interval.Phase]PhaseStyle{
	interval.PhaseStopped:   {Label: "Ready to start", Color: "#6b7280"},
	interval.PhaseReady:     {Label: "Get Ready!", Color: "#f59e0b"},
	interval.PhaseExercise:  {Label: "WORK!", Color: "#ef4444"},
	interval.PhaseRest:      {Label: "Rest", Color: "#22c55e"},
	interval.PhaseRoundRest: {Label: "Round Rest", Color: "#3b82f6"},
	interval.PhasePaused:    {Label: "Paused", Color: "#6b7280"},
	interval.PhaseCompleted: {Label: "Complete!", Color: "#8b5cf6"},
}

// GetPhaseStyle returns the label and color for phase
func GetPhaseStyle(phase interval.Phase) PhaseStyle {
	if style, ok := phaseStyles[phase]; ok {
		return style
	}
	return PhaseStyle{Label: phase.String(), Color: "white"}
}

// Width in cells of the phase progress bar
const progressBarWidth = 40
