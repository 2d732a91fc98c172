package camera

import (
	"errors"
	"image"
	"time"

	"github.com/soocke/camsnap/config"
)

var (
	// ErrDeviceUnavailable is returned when no rung of the constraint ladder produced a feed.
	ErrDeviceUnavailable = errors.New("camera: device unavailable")
	// ErrUnsupported is returned for sources the current platform cannot open.
	ErrUnsupported = errors.New("camera: source not supported on this platform")
	// ErrFeedLost is reported by Feed.Err when a running feed failed too many times in a row.
	ErrFeedLost = errors.New("camera: feed lost")
)

// FacingMode selects the front ("user") or back ("environment") camera.
type FacingMode string

const (
	FacingUser        FacingMode = config.FacingUser
	FacingEnvironment FacingMode = config.FacingEnvironment
)

// Toggle returns the opposite facing mode.
func (f FacingMode) Toggle() FacingMode {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// Mirrored reports whether frames of this facing mode are shown and captured mirrored.
func (f FacingMode) Mirrored() bool { return f == FacingUser }

func (f FacingMode) String() string { return string(f) }

// ParseFacing maps a config value to a FacingMode, defaulting to FacingUser.
func ParseFacing(s string) FacingMode {
	if s == config.FacingEnvironment {
		return FacingEnvironment
	}
	return FacingUser
}

// FrameSnapshot carries the latest captured frame and metadata.
type FrameSnapshot struct {
	Image      image.Image
	CapturedAt time.Time
	Sequence   uint64
}

// Width returns the frame width in pixels, 0 when no frame arrived yet.
func (s FrameSnapshot) Width() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the frame height in pixels, 0 when no frame arrived yet.
func (s FrameSnapshot) Height() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// Ready reports whether both dimensions are positive.
func (s FrameSnapshot) Ready() bool { return s.Width() > 0 && s.Height() > 0 }

// FrameSource provides read-only access to a live feed.
// LatestFrame returns the freshest snapshot while Running reports activity.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// Feed is a FrameSource owned by the acquisition layer. Stop releases the device and is
// safe to call more than once. Err is non-nil once the feed stopped on its own.
type Feed interface {
	FrameSource
	Name() string
	Stats() FeedStats
	Err() error
	Stop()
}
