package compose

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/camsnap/domain/photo"
)

// ErrEmptyFrame is returned when the frame has no pixels to composite.
var ErrEmptyFrame = errors.New("compose: empty frame")

// Compositor draws a frame and optional overlay onto its surface and encodes the result.
// It is not safe for concurrent use; callers serialise captures.
type Compositor struct {
	surface *Surface
	encoder Encoder
	logger  *slog.Logger
	now     func() time.Time
}

// NewCompositor creates a compositor with its own surface. A nil encoder selects JPEG at
// maximum quality.
func NewCompositor(enc Encoder, logger *slog.Logger) *Compositor {
	if enc == nil {
		enc = NewJPEGEncoder()
	}
	return &Compositor{surface: NewSurface(), encoder: enc, logger: logger, now: time.Now}
}

// Surface exposes the intermediate buffer of the last composition.
func (c *Compositor) Surface() *Surface { return c.surface }

// Compose renders frame at its native size, mirrored when requested, draws the overlay
// stretched over the whole surface without mirroring and encodes the result.
func (c *Compositor) Compose(frame image.Image, overlay *Overlay, mirror bool) (p *photo.Photo, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("compose panic: %v", r)
		}
	}()
	if frame == nil || frame.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	w, h := frame.Bounds().Dx(), frame.Bounds().Dy()
	start := time.Now()

	s := c.surface
	s.Resize(w, h)
	s.Clear()
	s.Save()
	if mirror {
		s.Translate(float64(w), 0)
		s.Scale(-1, 1)
	}
	s.DrawImage(frame)
	s.Restore()
	if overlay.Loaded() {
		s.DrawImageScaled(overlay.Image(), w, h)
	}

	data, err := c.encoder.Encode(s.Image())
	if err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}
	p = &photo.Photo{Data: data, MIME: c.encoder.MIME(), Width: w, Height: h, TakenAt: c.now()}
	if c.logger != nil {
		c.logger.Debug("composed capture",
			"width", w,
			"height", h,
			"mirror", mirror,
			"overlay", overlay.Loaded(),
			"size", p.Size(),
			"took", time.Since(start),
		)
	}
	return p, nil
}
