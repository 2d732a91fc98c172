package camera

import (
	"bytes"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStreamFeed_PublishesLatestFrame(t *testing.T) {
	var calls atomic.Int32
	grab := func() (image.Image, error) {
		n := calls.Add(1)
		if n%2 == 0 {
			return nil, nil // skipped round
		}
		return image.NewRGBA(image.Rect(0, 0, 8, 6)), nil
	}
	f := newStreamFeed("test", discardLogger(), grab, nil, time.Millisecond).start()
	defer f.Stop()

	waitFor(t, func() bool { return f.LatestFrame().Sequence >= 3 })
	snap := f.LatestFrame()
	if !snap.Ready() || snap.Width() != 8 || snap.Height() != 6 {
		t.Fatalf("snapshot %dx%d ready=%v", snap.Width(), snap.Height(), snap.Ready())
	}
	stats := f.Stats()
	if stats.Frames < 3 || stats.Skipped == 0 {
		t.Fatalf("stats frames=%d skipped=%d", stats.Frames, stats.Skipped)
	}
}

func TestStreamFeed_EmptyBeforeFirstFrame(t *testing.T) {
	block := make(chan struct{})
	grab := func() (image.Image, error) {
		<-block
		return nil, nil
	}
	f := newStreamFeed("idle", nil, grab, nil, 0).start()
	if snap := f.LatestFrame(); snap.Ready() || snap.Width() != 0 {
		t.Fatalf("expected empty snapshot, got %dx%d", snap.Width(), snap.Height())
	}
	close(block)
	f.Stop()
}

func TestStreamFeed_StopReleasesOnce(t *testing.T) {
	var releases atomic.Int32
	release := func() error {
		releases.Add(1)
		return errors.New("already closed")
	}
	grab := func() (image.Image, error) { return image.NewGray(image.Rect(0, 0, 1, 1)), nil }
	f := newStreamFeed("cam", discardLogger(), grab, release, time.Millisecond).start()
	f.Stop()
	f.Stop()
	if f.Running() {
		t.Fatal("feed still running after Stop")
	}
	if got := releases.Load(); got != 1 {
		t.Fatalf("release called %d times, want 1", got)
	}
}

func TestStreamFeed_GrabPanicStopsLoop(t *testing.T) {
	grab := func() (image.Image, error) { panic("driver exploded") }
	f := newStreamFeed("boom", discardLogger(), grab, nil, 0).start()
	waitFor(t, func() bool { return !f.Running() })
	f.Stop()
}

func TestStillFeed(t *testing.T) {
	f := NewStillFeed("still", image.NewRGBA(image.Rect(0, 0, 4, 3)), nil)
	if !f.Running() || !f.LatestFrame().Ready() {
		t.Fatal("still feed should be ready immediately")
	}
	f.Stop()
	if f.Running() || f.LatestFrame().Ready() {
		t.Fatal("stopped still feed must not serve frames")
	}
}

func TestStreamFeed_PersistentGrabErrorStopsFeed(t *testing.T) {
	var calls atomic.Int32
	unplugged := errors.New("no such device")
	grab := func() (image.Image, error) {
		calls.Add(1)
		return nil, unplugged
	}
	var logs bytes.Buffer
	f := newStreamFeed("/dev/video9", slog.New(slog.NewJSONHandler(&logs, nil)), grab, nil, 0)
	f.maxErrors = 5
	f.backoffMax = 2 * time.Millisecond
	f.start()

	waitFor(t, func() bool { return !f.Running() })
	f.Stop() // waits for the loop before logs are read

	if n := calls.Load(); n != 5 {
		t.Fatalf("grab called %d times, want 5", n)
	}
	err := f.Err()
	if !errors.Is(err, ErrFeedLost) || !errors.Is(err, unplugged) {
		t.Fatalf("Err() = %v, want ErrFeedLost wrapping the grab error", err)
	}
	// first failure plus the final give-up, nothing in between
	if n := strings.Count(logs.String(), "\n"); n != 2 {
		t.Fatalf("logged %d records, want 2:\n%s", n, logs.String())
	}
	if f.Stats().Skipped != 5 {
		t.Fatalf("skipped = %d", f.Stats().Skipped)
	}
}

func TestStreamFeed_GrabRecoversBeforeLimit(t *testing.T) {
	var calls atomic.Int32
	grab := func() (image.Image, error) {
		if calls.Add(1) <= 3 {
			return nil, errors.New("decode mjpeg frame: unexpected EOF")
		}
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	}
	f := newStreamFeed("flaky", discardLogger(), grab, nil, time.Millisecond)
	f.maxErrors = 4
	f.backoffMax = 2 * time.Millisecond
	f.start()
	defer f.Stop()

	waitFor(t, func() bool { return f.LatestFrame().Ready() })
	if !f.Running() || f.Err() != nil {
		t.Fatalf("running=%v err=%v, feed should recover", f.Running(), f.Err())
	}
}

func TestStreamFeed_StopInterruptsBackoff(t *testing.T) {
	grab := func() (image.Image, error) { return nil, errors.New("EIO") }
	f := newStreamFeed("slow", nil, grab, nil, 0)
	f.backoffMax = time.Hour
	f.start()
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	f.Stop()
	if d := time.Since(start); d > time.Second {
		t.Fatalf("Stop blocked %v in backoff", d)
	}
	if f.Err() != nil {
		t.Fatalf("stopped feed reported %v", f.Err())
	}
}
