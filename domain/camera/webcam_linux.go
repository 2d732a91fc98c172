//go:build linux

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/blackjack/webcam"

	"github.com/soocke/camsnap/config"
)

const webcamBufferCount = 4

// openWebcam opens a V4L2 device and negotiates a format and size that satisfy c.
func openWebcam(ctx context.Context, device string, c config.Constraints, wait time.Duration, logger *slog.Logger) (Feed, error) {
	if err := probeDevice(device); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cam, err := webcam.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	format, w, h, err := negotiate(cam, c)
	if err != nil {
		cam.Close()
		return nil, err
	}
	if c.FrameRate.Ideal > 0 {
		if err := cam.SetFramerate(float32(c.FrameRate.Ideal)); err != nil && logger != nil {
			logger.Debug("webcam framerate not applied", "device", device, "fps", c.FrameRate.Ideal, "error", err)
		}
	}
	if err := cam.SetBufferCount(webcamBufferCount); err != nil && logger != nil {
		logger.Debug("webcam buffer count not applied", "device", device, "error", err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, fmt.Errorf("start streaming %s: %w", device, err)
	}

	timeout := uint32(wait / time.Second)
	if timeout == 0 {
		timeout = 1
	}
	grab := func() (image.Image, error) {
		err := cam.WaitForFrame(timeout)
		var to *webcam.Timeout
		if errors.As(err, &to) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		buf, index, err := cam.GetFrame()
		if err != nil {
			return nil, err
		}
		img, derr := decodeFrame(format, w, h, buf)
		if err := cam.ReleaseFrame(index); err != nil {
			return img, err
		}
		return img, derr
	}
	release := func() error {
		serr := cam.StopStreaming()
		return errors.Join(serr, cam.Close())
	}
	if logger != nil {
		logger.Info("webcam streaming", "device", device, "format", fmt.Sprintf("%08x", format), "width", w, "height", h)
	}
	return newStreamFeed(device, logger, grab, release, 0).start(), nil
}

// negotiate picks the first supported pixel format and the best advertised size for c,
// applies it and verifies the driver kept the size within bounds.
func negotiate(cam *webcam.Webcam, c config.Constraints) (uint32, int, int, error) {
	supported := cam.GetSupportedFormats()
	var format webcam.PixelFormat
	found := false
	for _, f := range preferredFormats {
		if _, ok := supported[webcam.PixelFormat(f)]; ok {
			format, found = webcam.PixelFormat(f), true
			break
		}
	}
	if !found {
		return 0, 0, 0, fmt.Errorf("no supported pixel format among %d advertised", len(supported))
	}

	sizes := cam.GetSupportedFrameSizes(format)
	cands := make([]SizeRange, 0, len(sizes))
	for _, s := range sizes {
		cands = append(cands, SizeRange{
			MinW: int(s.MinWidth), MaxW: int(s.MaxWidth), StepW: int(s.StepWidth),
			MinH: int(s.MinHeight), MaxH: int(s.MaxHeight), StepH: int(s.StepHeight),
		})
	}
	w, h := c.Width.Ideal, c.Height.Ideal
	if len(cands) > 0 {
		var ok bool
		w, h, ok = PickSize(cands, c)
		if !ok {
			return 0, 0, 0, fmt.Errorf("no advertised size satisfies %s", describe(c))
		}
	}
	got, gw, gh, err := cam.SetImageFormat(format, uint32(w), uint32(h))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("set image format %dx%d: %w", w, h, err)
	}
	if !Satisfies(int(gw), int(gh), c) {
		return 0, 0, 0, fmt.Errorf("driver chose %dx%d outside %s", gw, gh, describe(c))
	}
	return uint32(got), int(gw), int(gh), nil
}
