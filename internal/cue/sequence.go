package cue

import "time"

// Pulse is one tone of a cue, started Offset after the cue is triggered.
type Pulse struct {
	FrequencyHz float64
	Duration    time.Duration
	Offset      time.Duration
}

const (
	countdownFrequency = 600
	countdownDuration  = 100 * time.Millisecond
	fanfareDuration    = 400 * time.Millisecond
)

// CountdownSequence is the three-beep warning, one beep per remaining second.
func CountdownSequence() []Pulse {
	return []Pulse{
		{FrequencyHz: countdownFrequency, Duration: countdownDuration, Offset: 0},
		{FrequencyHz: countdownFrequency, Duration: countdownDuration, Offset: time.Second},
		{FrequencyHz: countdownFrequency, Duration: countdownDuration, Offset: 2 * time.Second},
	}
}

// FanfareSequence is the completion fanfare: a rising A major run ending in
// two-note chords.
func FanfareSequence() []Pulse {
	notes := []struct {
		hz float64
		at time.Duration
	}{
		{440, 0},     // A4
		{554, 200},   // C#5
		{659, 400},   // E5
		{880, 600},   // A5
		{659, 600},   // E5
		{1047, 800},  // C6
		{880, 800},   // A5
		{1319, 1000}, // E6
	}

	seq := make([]Pulse, 0, len(notes))
	for _, n := range notes {
		seq = append(seq, Pulse{
			FrequencyHz: n.hz,
			Duration:    fanfareDuration,
			Offset:      n.at * time.Millisecond,
		})
	}
	return seq
}
