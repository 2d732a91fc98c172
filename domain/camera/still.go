package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
)

// stillFeed serves a single decoded image as a permanently ready feed. It backs the
// "image" source used for demos and headless testing.
type stillFeed struct {
	name    string
	logger  *slog.Logger
	snap    FrameSnapshot
	running atomic.Bool
}

// NewStillFeed wraps img as a running feed.
func NewStillFeed(name string, img image.Image, logger *slog.Logger) Feed {
	f := &stillFeed{
		name:   name,
		logger: logger,
		snap:   FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: 1},
	}
	f.running.Store(true)
	return f
}

func openStill(ctx context.Context, path string, logger *slog.Logger) (Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open still image %s: %w", path, err)
	}
	if logger != nil {
		logger.Info("still source loaded", "path", path, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	}
	return NewStillFeed(path, img, logger), nil
}

func (f *stillFeed) Name() string  { return f.name }
func (f *stillFeed) Running() bool { return f.running.Load() }

func (f *stillFeed) LatestFrame() FrameSnapshot {
	if !f.running.Load() {
		return FrameSnapshot{}
	}
	return f.snap
}

func (f *stillFeed) Stats() FeedStats {
	return FeedStats{Frames: 1, LastFrame: f.snap.CapturedAt, LatestFrameAge: time.Since(f.snap.CapturedAt), Sequence: f.snap.Sequence}
}

func (f *stillFeed) Err() error { return nil }

func (f *stillFeed) Stop() {
	if f.running.Swap(false) && f.logger != nil {
		f.logger.Debug("feed stopped", "feed", f.name)
	}
}
