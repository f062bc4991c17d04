package cue

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/lowaak/smart-trainer/tabata-app/internal/go_func_utils"
)

const playerPollInterval = 20 * time.Millisecond

type otoOutput struct {
	ctx        *oto.Context
	sampleRate int
	logger     *log.Logger
}

// OtoOpener returns an Opener for the system audio device.
// oto allows a single context per process, so call the Opener once.
func OtoOpener(sampleRate int, logger *log.Logger) Opener {
	return func() (Output, error) {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
		}
		<-ready

		return &otoOutput{ctx: ctx, sampleRate: sampleRate, logger: logger}, nil
	}
}

func (o *otoOutput) Play(pcm []byte) error {
	if err := o.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}

	player := o.ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	// Players hold device buffers until closed
	go_func_utils.SafeGo(o.logger, func() {
		for player.IsPlaying() {
			time.Sleep(playerPollInterval)
		}
		if err := player.Close(); err != nil {
			o.logger.Printf("CueEmitter: Error closing player: %v", err)
		}
	})
	return nil
}

func (o *otoOutput) Resume() error {
	return o.ctx.Resume()
}

func (o *otoOutput) SampleRate() int {
	return o.sampleRate
}

func (o *otoOutput) Close() error {
	return o.ctx.Suspend()
}
