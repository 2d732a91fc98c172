package images

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed))
	return buf.Bytes()
}

// ScaleToFit scales src so it fits within maxW x maxH preserving aspect ratio. If the
// source already fits, src is returned unchanged. Live frames use a fast filter.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	return imaging.Fit(src, maxW, maxH, imaging.Box)
}

// Mirror flips src horizontally for selfie-style display.
func Mirror(src image.Image) image.Image {
	if src == nil {
		return nil
	}
	return imaging.FlipH(src)
}

// PreviewPNG prepares a frame for a Tk photo: scaled to fit, optionally mirrored and
// encoded as PNG, since Tk photos cannot take JPEG data directly.
func PreviewPNG(src image.Image, maxW, maxH int, mirrored bool) []byte {
	img := ScaleToFit(src, maxW, maxH)
	if mirrored {
		img = Mirror(img)
	}
	return EncodePNG(img)
}
