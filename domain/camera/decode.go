package camera

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// V4L2 fourcc codes understood by the frame decoder.
const (
	PixelFormatMJPEG uint32 = 0x47504A4D // 'MJPG'
	PixelFormatJPEG  uint32 = 0x4745504A // 'JPEG'
	PixelFormatYUYV  uint32 = 0x56595559 // 'YUYV'
)

// preferredFormats is the negotiation order; compressed first keeps USB bandwidth low.
var preferredFormats = []uint32{PixelFormatMJPEG, PixelFormatJPEG, PixelFormatYUYV}

// decodeFrame converts a raw device buffer into an image. The buffer is not retained.
func decodeFrame(format uint32, w, h int, frame []byte) (image.Image, error) {
	switch format {
	case PixelFormatMJPEG, PixelFormatJPEG:
		if len(frame) == 0 {
			return nil, nil
		}
		img, err := imaging.Decode(bytes.NewReader(frame))
		if err != nil {
			return nil, fmt.Errorf("decode mjpeg frame: %w", err)
		}
		return img, nil
	case PixelFormatYUYV:
		return decodeYUYV(w, h, frame)
	default:
		return nil, fmt.Errorf("unsupported pixel format %08x", format)
	}
}

// decodeYUYV unpacks packed 4:2:2 (Y0 U Y1 V) into a fresh YCbCr image.
func decodeYUYV(w, h int, frame []byte) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid yuyv size %dx%d", w, h)
	}
	if need := w * h * 2; len(frame) < need {
		return nil, fmt.Errorf("short yuyv frame: %d bytes, want %d", len(frame), need)
	}
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio422)
	for y := 0; y < h; y++ {
		row := frame[y*w*2:]
		for cx := 0; cx < w/2; cx++ {
			px := row[cx*4 : cx*4+4]
			yi := y*img.YStride + cx*2
			img.Y[yi] = px[0]
			img.Y[yi+1] = px[2]
			ci := y*img.CStride + cx
			img.Cb[ci] = px[1]
			img.Cr[ci] = px[3]
		}
	}
	return img, nil
}
