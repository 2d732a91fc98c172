package app

import (
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// tkScheduler runs callbacks on the Tk event loop via `after`.
type tkScheduler struct {
	logger *slog.Logger
}

func (s tkScheduler) After(d time.Duration, fn func()) func() {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	var done bool
	id := TclAfter(d, func() {
		done = true
		defer func() {
			if r := recover(); r != nil && s.logger != nil {
				s.logger.Error("scheduled callback panic", "panic", r)
			}
		}()
		fn()
	})
	return func() {
		if !done {
			done = true
			TclAfterCancel(id)
		}
	}
}
