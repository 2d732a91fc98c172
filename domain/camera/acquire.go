package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/camsnap/config"
)

// Opener opens one device with one constraint rung and returns a running feed.
type Opener func(ctx context.Context, device string, c config.Constraints) (Feed, error)

// Acquirer resolves a device for the requested facing mode and walks the constraint
// ladder until a rung succeeds.
type Acquirer struct {
	logger *slog.Logger
	open   Opener
	front  string
	back   string
	ladder []config.Constraints
}

// NewAcquirer builds an Acquirer for the configured source type.
func NewAcquirer(cfg *config.Config, logger *slog.Logger) (*Acquirer, error) {
	var open Opener
	switch cfg.Camera.Source {
	case config.SourceV4L2, "":
		wait := cfg.FrameWait()
		open = func(ctx context.Context, device string, c config.Constraints) (Feed, error) {
			return openWebcam(ctx, device, c, wait, logger)
		}
	case config.SourceScreen:
		open = func(ctx context.Context, _ string, c config.Constraints) (Feed, error) {
			return openScreen(ctx, c, logger)
		}
	case config.SourceImage:
		open = func(ctx context.Context, device string, _ config.Constraints) (Feed, error) {
			return openStill(ctx, device, logger)
		}
	default:
		return nil, fmt.Errorf("unknown camera source %q", cfg.Camera.Source)
	}
	return NewAcquirerWithOpener(open, cfg.Camera.FrontDevice, cfg.Camera.BackDevice, []config.Constraints{cfg.Camera.Preferred, cfg.Camera.Fallback}, logger), nil
}

// NewAcquirerWithOpener builds an Acquirer around a custom opener.
func NewAcquirerWithOpener(open Opener, front, back string, ladder []config.Constraints, logger *slog.Logger) *Acquirer {
	return &Acquirer{logger: logger, open: open, front: front, back: back, ladder: ladder}
}

// Device returns the device path serving the given facing mode. When only one device
// is configured it serves both.
func (a *Acquirer) Device(facing FacingMode) string {
	if facing == FacingEnvironment {
		if a.back != "" {
			return a.back
		}
		return a.front
	}
	if a.front != "" {
		return a.front
	}
	return a.back
}

// Acquire opens a live feed for facing, trying each constraint rung in order.
func (a *Acquirer) Acquire(ctx context.Context, facing FacingMode) (Feed, error) {
	device := a.Device(facing)
	var errs []error
	for i, c := range a.ladder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		feed, err := a.open(ctx, device, c)
		if err == nil {
			if a.logger != nil {
				a.logger.Info("camera acquired",
					"device", device,
					"facing", facing.String(),
					"rung", i,
					"constraints", describe(c),
					"took", time.Since(start),
				)
			}
			return feed, nil
		}
		if errors.Is(err, ErrUnsupported) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceUnavailable, err)
		}
		if a.logger != nil {
			a.logger.Warn("camera rung failed", "device", device, "rung", i, "constraints", describe(c), "error", err)
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s: no constraints configured", ErrDeviceUnavailable, device)
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrDeviceUnavailable, device, errors.Join(errs...))
}
