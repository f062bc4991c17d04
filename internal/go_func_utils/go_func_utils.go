package go_func_utils

import (
	"log"
	"runtime/debug"
	"time"
)

// SafeGo runs fn on a new goroutine. A panic is written to logger with its
// stack before being re-raised, since the terminal UI swallows stderr.
func SafeGo(logger *log.Logger, fn func()) {
	go func() {
		defer logPanic(logger)
		fn()
	}()
}

// SafeAfterFunc is time.AfterFunc with the same panic logging as SafeGo.
// The returned timer can be stopped to cancel fn.
func SafeAfterFunc(logger *log.Logger, d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() {
		defer logPanic(logger)
		fn()
	})
}

func logPanic(logger *log.Logger) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Printf("PANIC: %v\n%s", r, debug.Stack())
		}
		panic(r)
	}
}
