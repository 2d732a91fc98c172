package photo

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"golang.design/x/clipboard"
)

// clipboardBackend is the system clipboard surface used by Clipboard.
type clipboardBackend interface {
	Init() error
	WriteImage(pngData []byte)
}

type systemClipboard struct{}

func (systemClipboard) Init() error { return clipboard.Init() }

func (systemClipboard) WriteImage(pngData []byte) { clipboard.Write(clipboard.FmtImage, pngData) }

// Clipboard copies photos to the system clipboard as PNG.
type Clipboard struct {
	backend clipboardBackend
	logger  *slog.Logger

	once    sync.Once
	initErr error
}

// NewClipboard returns a clipboard exporter backed by the system clipboard.
func NewClipboard(logger *slog.Logger) *Clipboard {
	return &Clipboard{backend: systemClipboard{}, logger: logger}
}

// Copy re-encodes p as PNG and places it on the clipboard.
func (c *Clipboard) Copy(p *Photo) error {
	if p.Empty() {
		return ErrNoPhoto
	}
	c.once.Do(func() { c.initErr = c.backend.Init() })
	if c.initErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", c.initErr)
	}
	img, err := p.Decode()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode clipboard png: %w", err)
	}
	c.backend.WriteImage(buf.Bytes())
	if c.logger != nil {
		c.logger.Info("photo copied to clipboard", "width", p.Width, "height", p.Height, "png_size", humanize.Bytes(uint64(buf.Len())))
	}
	return nil
}
