package photo

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
)

// Photo is one encoded still produced by a capture.
type Photo struct {
	Data    []byte
	MIME    string
	Width   int
	Height  int
	TakenAt time.Time
}

// Empty reports whether the photo carries no bytes.
func (p *Photo) Empty() bool { return p == nil || len(p.Data) == 0 }

// Size returns the encoded size in human-readable form.
func (p *Photo) Size() string {
	if p == nil {
		return humanize.Bytes(0)
	}
	return humanize.Bytes(uint64(len(p.Data)))
}

// Decode decodes the photo bytes back into an image.
func (p *Photo) Decode() (image.Image, error) {
	if p.Empty() {
		return nil, fmt.Errorf("decode photo: empty")
	}
	img, err := imaging.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	return img, nil
}

// Extension returns the file extension matching MIME, including the dot.
func (p *Photo) Extension() string {
	switch p.MIME {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
