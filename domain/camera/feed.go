package camera

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	feedStatsLogInterval = 5 * time.Second

	// Consecutive grab errors back off exponentially; after maxGrabErrors the feed
	// gives up and reports ErrFeedLost through Err.
	grabBackoffMin    = 5 * time.Millisecond
	grabBackoffMax    = time.Second
	maxGrabErrors     = 30
	grabErrorLogEvery = 10
)

// grabFunc returns the next frame. A nil image with nil error means "no frame this round".
type grabFunc func() (image.Image, error)

// streamFeed pulls frames from a grabFunc on its own goroutine and keeps the latest one
// in an atomic slot for the UI thread to read.
type streamFeed struct {
	name     string
	logger   *slog.Logger
	grab     grabFunc
	release  func() error
	interval time.Duration // pause between grabs; 0 when grab itself blocks

	maxErrors  int
	backoffMax time.Duration

	running   atomic.Bool
	latest    atomic.Pointer[FrameSnapshot]
	frames    atomic.Uint64
	skipped   atomic.Uint64
	grabNanos atomic.Uint64
	sequence  atomic.Uint64

	lost     atomic.Pointer[error]
	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func newStreamFeed(name string, logger *slog.Logger, grab grabFunc, release func() error, interval time.Duration) *streamFeed {
	return &streamFeed{
		name:       name,
		logger:     logger,
		grab:       grab,
		release:    release,
		interval:   interval,
		maxErrors:  maxGrabErrors,
		backoffMax: grabBackoffMax,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// start launches the pull loop. It must be called once.
func (s *streamFeed) start() *streamFeed {
	s.running.Store(true)
	go s.loop()
	return s
}

func (s *streamFeed) Name() string  { return s.name }
func (s *streamFeed) Running() bool { return s.running.Load() }

// Err returns why the feed stopped on its own, nil while healthy or after Stop.
func (s *streamFeed) Err() error {
	if p := s.lost.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *streamFeed) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *streamFeed) Stats() FeedStats {
	frames := s.frames.Load()
	total := s.grabNanos.Load()
	var avg time.Duration
	if frames > 0 && total > 0 {
		avg = time.Duration(total / frames)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return FeedStats{
		Frames:         frames,
		Skipped:        s.skipped.Load(),
		AvgGrab:        avg,
		LastFrame:      snapshot.CapturedAt,
		LatestFrameAge: age,
		Sequence:       snapshot.Sequence,
	}
}

// Stop ends the loop, waits for it to exit and releases the device.
func (s *streamFeed) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)
		close(s.quit)
		<-s.done
		if s.release != nil {
			if err := s.release(); err != nil && s.logger != nil {
				s.logger.Warn("feed release", "feed", s.name, "error", err)
			}
		}
		if s.logger != nil {
			s.logger.Debug("feed stopped", "feed", s.name)
		}
	})
}

func (s *streamFeed) loop() {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			s.running.Store(false)
			if s.logger != nil {
				s.logger.Error("feed loop panic", "feed", s.name, "error", r)
			}
		}
	}()
	logTicker := time.NewTicker(feedStatsLogInterval)
	defer logTicker.Stop()
	failures := 0
	backoff := grabBackoffMin
	for s.running.Load() {
		start := time.Now()
		img, err := s.grab()
		if err != nil {
			failures++
			if s.grabFailed(err, failures) {
				return
			}
			if !s.sleep(backoff) {
				return
			}
			backoff = min(backoff*2, s.backoffMax)
			continue
		}
		failures, backoff = 0, grabBackoffMin
		if img == nil || img.Bounds().Empty() {
			s.skipped.Add(1)
			time.Sleep(1 * time.Millisecond)
			continue
		}

		elapsed := time.Since(start)
		s.grabNanos.Add(uint64(elapsed.Nanoseconds()))
		s.frames.Add(1)
		seq := s.sequence.Add(1)
		s.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}

		if s.interval > 0 && !s.sleep(s.interval) {
			return
		}
	}
}

// grabFailed records a failed grab and reports whether the feed gave up. Only the first
// error of a run and every grabErrorLogEvery-th repeat are logged.
func (s *streamFeed) grabFailed(err error, failures int) bool {
	s.skipped.Add(1)
	if failures >= s.maxErrors {
		lost := fmt.Errorf("%w: %s: %d consecutive grab errors: %w", ErrFeedLost, s.name, failures, err)
		s.lost.Store(&lost)
		s.running.Store(false)
		if s.logger != nil {
			s.logger.Error("feed lost", "feed", s.name, "failures", failures, "error", err)
		}
		return true
	}
	if s.logger == nil {
		return false
	}
	if failures == 1 {
		s.logger.Error("feed grab", "feed", s.name, "error", err)
	} else if failures%grabErrorLogEvery == 0 {
		s.logger.Warn("feed grab still failing", "feed", s.name, "failures", failures, "error", err)
	}
	return false
}

// sleep waits d or until Stop; false means the feed is stopping.
func (s *streamFeed) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.quit:
		return false
	}
}

func (s *streamFeed) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("feed.stats",
		"feed", s.name,
		"frames", stats.Frames,
		"skipped", stats.Skipped,
		"avg_grab", stats.AvgGrab,
		"age", stats.LatestFrameAge,
	)
}

var _ Feed = (*streamFeed)(nil)
