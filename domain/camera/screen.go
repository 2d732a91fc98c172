package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/vova616/screenshot"

	"github.com/soocke/camsnap/config"
)

// openScreen streams the primary monitor as a stand-in camera. The frame rate ideal sets
// the grab interval; width/height constraints are checked against the screen size.
func openScreen(ctx context.Context, c config.Constraints, logger *slog.Logger) (Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return nil, fmt.Errorf("screen rect: %w", err)
	}
	if !Satisfies(rect.Dx(), rect.Dy(), c) {
		return nil, fmt.Errorf("screen %dx%d outside %s", rect.Dx(), rect.Dy(), describe(c))
	}
	interval := time.Second / 30
	if c.FrameRate.Ideal > 0 {
		interval = time.Second / time.Duration(c.FrameRate.Ideal)
	}
	grab := func() (image.Image, error) {
		img, err := screenshot.CaptureScreen()
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	if logger != nil {
		logger.Info("screen source streaming", "width", rect.Dx(), "height", rect.Dy(), "interval", interval)
	}
	return newStreamFeed("screen", logger, grab, nil, interval).start(), nil
}
