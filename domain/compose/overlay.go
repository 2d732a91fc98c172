package compose

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/soocke/camsnap/assets"
)

// Overlay is a decorative image drawn over every capture. A nil Overlay is valid and
// reports not loaded.
type Overlay struct {
	img    image.Image
	source string
}

// NewOverlay wraps an already decoded image.
func NewOverlay(img image.Image, source string) *Overlay {
	return &Overlay{img: img, source: source}
}

// LoadOverlay decodes the overlay at path, or the embedded frame when path is empty.
func LoadOverlay(path string) (*Overlay, error) {
	if path == "" {
		img, err := assets.FrameImage()
		if err != nil {
			return nil, fmt.Errorf("embedded overlay: %w", err)
		}
		return NewOverlay(img, "embedded"), nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load overlay %s: %w", path, err)
	}
	return NewOverlay(img, path), nil
}

// Image returns the decoded overlay, nil when not loaded.
func (o *Overlay) Image() image.Image {
	if o == nil {
		return nil
	}
	return o.img
}

// Source names where the overlay came from.
func (o *Overlay) Source() string {
	if o == nil {
		return ""
	}
	return o.source
}

func (o *Overlay) Width() int {
	if o == nil || o.img == nil {
		return 0
	}
	return o.img.Bounds().Dx()
}

func (o *Overlay) Height() int {
	if o == nil || o.img == nil {
		return 0
	}
	return o.img.Bounds().Dy()
}

// Loaded reports whether the overlay has positive dimensions.
func (o *Overlay) Loaded() bool { return o.Width() > 0 && o.Height() > 0 }
