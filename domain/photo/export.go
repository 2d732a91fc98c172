package photo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ErrNoPhoto is returned when exporting without a captured photo.
var ErrNoPhoto = errors.New("photo: nothing to export")

// FileExporter writes photos to a directory with a timestamp-derived name.
type FileExporter struct {
	dir    string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewFileExporter creates an exporter writing to dir. The directory is created lazily.
func NewFileExporter(dir, prefix string, logger *slog.Logger) *FileExporter {
	if prefix == "" {
		prefix = "photo"
	}
	return &FileExporter{dir: dir, prefix: prefix, logger: logger, now: time.Now}
}

// Dir returns the target directory.
func (e *FileExporter) Dir() string { return e.dir }

// FileName returns the name used for a save at t: <prefix>_<unix-millis><ext>.
func (e *FileExporter) FileName(p *Photo, t time.Time) string {
	return e.prefix + "_" + strconv.FormatInt(t.UnixMilli(), 10) + p.Extension()
}

// Export writes p and returns the full path written.
func (e *FileExporter) Export(p *Photo) (string, error) {
	if p.Empty() {
		return "", ErrNoPhoto
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create save dir: %w", err)
	}
	path := filepath.Join(e.dir, e.FileName(p, e.now()))
	if err := os.WriteFile(path, p.Data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	if e.logger != nil {
		e.logger.Info("photo saved", "path", path, "size", p.Size(), "width", p.Width, "height", p.Height)
	}
	return path, nil
}
