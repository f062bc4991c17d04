// Package cue plays the audible countdown and completion cues of a workout.
// Playback is best effort: when no audio device can be opened every cue
// becomes a no-op.
package cue

import (
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/tabata-app/internal/go_func_utils"
)

var ErrAudioUnavailable = errors.New("audio output unavailable")

// Output is an opened audio device accepting PCM produced by Synthesize.
type Output interface {
	// Play queues pcm and returns without waiting for it to finish.
	Play(pcm []byte) error
	// Resume wakes a suspended device.
	Resume() error
	SampleRate() int
	Close() error
}

// Opener opens the audio device. It is called at most once per Emitter.
type Opener func() (Output, error)

// Emitter schedules cue pulses on a lazily opened Output.
type Emitter struct {
	logger   *log.Logger
	open     Opener
	schedule func(d time.Duration, fn func())
	spawn    func(fn func())

	// openMu serializes opening so the device is opened once without
	// holding mu
	openMu      sync.Mutex
	mu          sync.Mutex
	output      Output
	unavailable bool
	closed      bool
	playFailed  bool
}

// NewEmitter creates an Emitter. A nil open disables audio.
func NewEmitter(logger *log.Logger, open Opener) *Emitter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	e := &Emitter{
		logger: logger,
		open:   open,
	}
	e.schedule = func(d time.Duration, fn func()) {
		go_func_utils.SafeAfterFunc(e.logger, d, fn)
	}
	e.spawn = func(fn func()) {
		go_func_utils.SafeGo(e.logger, fn)
	}
	if open == nil {
		e.unavailable = true
		logger.Printf("CueEmitter: Audio disabled")
	}
	return e
}

// Prepare opens the output if needed and resumes it if suspended. It
// returns without waiting for the device.
func (e *Emitter) Prepare() {
	if !e.Available() {
		return
	}
	e.spawn(func() {
		out := e.acquire()
		if out == nil {
			return
		}
		if err := out.Resume(); err != nil {
			e.logger.Printf("CueEmitter: Failed to resume audio: %v", err)
		}
	})
}

// PlayPulse plays a single enveloped sine tone.
func (e *Emitter) PlayPulse(freqHz float64, d time.Duration) {
	out := e.acquire()
	if out == nil {
		return
	}

	pcm := Synthesize(freqHz, d, out.SampleRate())
	if err := out.Play(pcm); err != nil {
		e.mu.Lock()
		first := !e.playFailed
		e.playFailed = true
		e.mu.Unlock()
		if first {
			e.logger.Printf("CueEmitter: Error playing pulse: %v", err)
		}
	}
}

// PlaySequence schedules every pulse of seq relative to now and returns immediately.
func (e *Emitter) PlaySequence(seq []Pulse) {
	if !e.Available() {
		return
	}
	for _, p := range seq {
		e.schedule(p.Offset, func() {
			e.PlayPulse(p.FrequencyHz, p.Duration)
		})
	}
}

func (e *Emitter) PlayCountdown() {
	e.logger.Printf("CueEmitter: Playing countdown")
	e.PlaySequence(CountdownSequence())
}

func (e *Emitter) PlayFanfare() {
	e.logger.Printf("CueEmitter: Playing completion fanfare")
	e.PlaySequence(FanfareSequence())
}

// Available reports whether cues can still be played.
func (e *Emitter) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.unavailable && !e.closed
}

// Close releases the output. Pulses still scheduled are dropped.
func (e *Emitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if e.output == nil {
		return nil
	}
	err := e.output.Close()
	e.output = nil
	return err
}

func (e *Emitter) acquire() Output {
	if out, done := e.current(); done {
		return out
	}

	e.openMu.Lock()
	defer e.openMu.Unlock()
	if out, done := e.current(); done {
		return out
	}

	out, err := e.open()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.unavailable = true
		e.logger.Printf("CueEmitter: Audio not available, cues disabled: %v", err)
		return nil
	}
	if e.closed {
		if err := out.Close(); err != nil {
			e.logger.Printf("CueEmitter: Error closing audio: %v", err)
		}
		return nil
	}
	e.output = out
	e.logger.Printf("CueEmitter: Audio output ready at %d Hz", out.SampleRate())
	return out
}

// current reports the opened output, or done with a nil output when audio
// cannot be used. It returns done false while the device still needs opening.
func (e *Emitter) current() (Output, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unavailable || e.closed {
		return nil, true
	}
	return e.output, e.output != nil
}
