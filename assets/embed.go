package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/png"
)

// FramePNG contains the raw PNG bytes of the default decorative photo frame.
//
//go:embed frame.png
var FramePNG []byte

// FrameImage decodes the embedded PNG into an image.Image.
func FrameImage() (image.Image, error) {
	if len(FramePNG) == 0 {
		return nil, fmt.Errorf("embedded frame.png is empty")
	}
	img, err := png.Decode(bytes.NewReader(FramePNG))
	if err != nil {
		return nil, err
	}
	return img, nil
}
