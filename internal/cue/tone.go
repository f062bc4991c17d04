package cue

import (
	"encoding/binary"
	"math"
	"time"
)

// Pulse envelope: quick linear attack, hold, quick exponential decay
const (
	attackTime  = 10 * time.Millisecond
	releaseTime = 10 * time.Millisecond
	peakGain    = 0.4
	floorGain   = 0.01
)

const (
	channelCount   = 2
	bytesPerSample = 2
)

// Synthesize renders a sine pulse as interleaved stereo signed 16-bit
// little-endian PCM at sampleRate.
func Synthesize(freqHz float64, d time.Duration, sampleRate int) []byte {
	if d <= 0 || sampleRate <= 0 {
		return nil
	}

	frames := int(int64(d) * int64(sampleRate) / int64(time.Second))
	pcm := make([]byte, frames*channelCount*bytesPerSample)

	for i := 0; i < frames; i++ {
		t := float64(i) / float64(sampleRate)
		v := envelope(t, d.Seconds()) * math.Sin(2*math.Pi*freqHz*t)
		sample := uint16(int16(math.Round(v * math.MaxInt16)))

		offset := i * channelCount * bytesPerSample
		for c := 0; c < channelCount; c++ {
			binary.LittleEndian.PutUint16(pcm[offset+c*bytesPerSample:], sample)
		}
	}
	return pcm
}

// envelope returns the gain at time t of a pulse lasting total seconds.
func envelope(t, total float64) float64 {
	attack := math.Min(attackTime.Seconds(), total/2)
	release := math.Min(releaseTime.Seconds(), total-attack)

	switch {
	case t < attack:
		return peakGain * t / attack
	case t >= total-release && release > 0:
		progress := (t - (total - release)) / release
		return peakGain * math.Pow(floorGain/peakGain, progress)
	default:
		return peakGain
	}
}
