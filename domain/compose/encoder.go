package compose

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// MaxQuality is the highest JPEG quality accepted by the encoder.
const MaxQuality = 100

// Encoder turns a composited surface into compressed bytes.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
	MIME() string
}

// JPEGEncoder encodes at a fixed quality.
type JPEGEncoder struct {
	Quality int
}

// NewJPEGEncoder returns an encoder at maximum quality.
func NewJPEGEncoder() JPEGEncoder { return JPEGEncoder{Quality: MaxQuality} }

func (e JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	q := e.Quality
	if q <= 0 || q > MaxQuality {
		q = MaxQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (JPEGEncoder) MIME() string { return "image/jpeg" }
