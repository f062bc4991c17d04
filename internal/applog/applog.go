// Package applog builds the application logger. The terminal UI owns the
// screen, so log lines go to a rotating file and to the UI log pane instead
// of stderr.
package applog

import (
	"io"
	"log"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a logger writing to opts.File and, line by line, to uiLogChan
// when it is not nil. Close the returned Closer on exit.
func New(opts Options, uiLogChan chan<- string) (*log.Logger, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}

	var out io.Writer = rotator
	if uiLogChan != nil {
		out = io.MultiWriter(rotator, NewChanWriter(uiLogChan))
	}
	return log.New(out, "", log.LstdFlags), rotator
}

// ChanWriter sends every line written to it on a channel. Lines are dropped
// when the channel is full so logging never blocks on the UI.
type ChanWriter struct {
	ch chan<- string
}

func NewChanWriter(ch chan<- string) *ChanWriter {
	return &ChanWriter{ch: ch}
}

func (w *ChanWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case w.ch <- line:
		default:
		}
	}
	return len(p), nil
}
