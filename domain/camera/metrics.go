package camera

import "time"

// FeedStats summarises feed loop behaviour for instrumentation.
type FeedStats struct {
	Frames         uint64
	Skipped        uint64
	AvgGrab        time.Duration
	LastFrame      time.Time
	LatestFrameAge time.Duration
	Sequence       uint64
}
